package cronjob

import (
	"log"

	"github.com/robfig/cron/v3"
)

var runner = cron.New()

func RegisterJob(name string, job func(), spec string) {
	_, err := runner.AddFunc(spec, job)
	if err != nil {
		log.Printf("cronjob: failed to register %s (%s): %v\n", name, spec, err)
		return
	}

	log.Printf("cronjob: registered %s (%s)\n", name, spec)
}

func Start() {
	runner.Start()
}
