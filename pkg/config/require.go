package config

import "log"

var fatalf = log.Fatalf

func MustNonEmpty(value, envName string) {
	if value == "" {
		fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		fatalf("missing required env %s", envName)
	}
}
