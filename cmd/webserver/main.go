package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/integrii/flaggy"

	"github.com/trytobebee/mole_go/pkg/config"
	"github.com/trytobebee/mole_go/pkg/server"
)

func main() {
	opts := config.Default()
	var (
		addr      = ":8080"
		staticDir = "web/static"
		record    bool
		recordDir = "records"
	)

	flaggy.SetName("webserver")
	flaggy.SetDescription("Serves whack-a-mole to browsers over websockets")
	config.BindFlags(flaggy.DefaultParser, &opts)
	flaggy.String(&addr, "a", "addr", "Listen address")
	flaggy.String(&staticDir, "", "static", "Directory with the browser client")
	flaggy.Bool(&record, "", "record", "Write an event journal per session")
	flaggy.String(&recordDir, "", "records", "Directory for event journals")
	flaggy.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithStaticDir(staticDir),
	}
	if record {
		serverOpts = append(serverOpts, server.WithRecordDir(recordDir))
	}

	srv, err := server.New(opts, serverOpts...)
	if err != nil {
		logger.Fatalf("Invalid settings: %v", err)
	}

	fmt.Printf("🔨 Whack-a-mole server starting on http://localhost%s\n", addr)
	logger.Fatal(http.ListenAndServe(addr, srv.Handler()))
}
