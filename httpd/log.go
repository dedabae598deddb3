package httpd

import (
	"fmt"
	"log"
)

var debugging = false

// SetDebug enables debug logging.
func SetDebug(enabled bool) {
	debugging = enabled
}

func debugf(format string, args ...any) {
	if debugging {
		log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
	}
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}
