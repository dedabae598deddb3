package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/utagetools/utage-routes/httpd"
)

const APP = "utage-routes"

var options = struct {
	addr    string
	debug   bool
	version bool
}{
	addr:    ":8080",
	debug:   false,
	version: false,
}

var version = "v0.1.0"

func main() {
	flag.StringVar(&options.addr, "addr", options.addr, "Address to listen on")
	flag.BoolVar(&options.debug, "debug", options.debug, "Enable debugging information")
	flag.BoolVar(&options.version, "version", options.version, "Print version and exit")
	flag.Parse()

	if options.version {
		fmt.Printf("%s %s\n", APP, version)
		os.Exit(0)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("%-5s No .env file loaded (%v)", "DEBUG", err)
	}

	httpd.SetDebug(options.debug)
	if !options.debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    options.addr,
		Handler: httpd.NewServer().Router(),
	}

	go func() {
		log.Printf("%-5s %s %s listening on %s", "INFO", APP, version, options.addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ERROR: %v", err)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("%-5s %v", "WARN", err)
	}

	log.Printf("%-5s %s stopped", "INFO", APP)
}
