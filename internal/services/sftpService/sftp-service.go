package sftpService

import (
	"errors"
	"fmt"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

func NewClient() (*sftp.Client, *ssh.Client, error) {
	sshHost := os.Getenv("sftp_host")
	sshPort := os.Getenv("sftp_port")
	sshUsername := os.Getenv("sftp_user")
	sshPassword := os.Getenv("sftp_password")

	if sshHost == `` || sshUsername == `` {
		return nil, nil, errors.New("missing sftp_host or sftp_user")
	}

	if sshPort == `` {
		sshPort = "22"
	}

	sshConfig := &ssh.ClientConfig{
		User: sshUsername,
		Auth: []ssh.AuthMethod{
			ssh.Password(sshPassword),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	sshConn, err := ssh.Dial("tcp", fmt.Sprintf("%s:%s", sshHost, sshPort), sshConfig)
	if err != nil {
		return nil, nil, err
	}

	sftpClient, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return nil, nil, err
	}

	return sftpClient, sshConn, nil
}
