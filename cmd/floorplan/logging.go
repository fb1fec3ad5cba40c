package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

const defaultLogFileName = "floorplan.log"

// setupLogging routes the standard logger to path when debug is set and
// discards it otherwise. The returned file must be closed by the caller.
func setupLogging(debug bool, path string) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}
	if path == "" {
		path = defaultLogFileName
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.SetOutput(io.Discard)
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("=== floorplan started ===")
	return f
}
