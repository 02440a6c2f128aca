package models

import "errors"

var (
	ErrDuplicate  = errors.New("duplicate record")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
)

type BaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PageResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}
