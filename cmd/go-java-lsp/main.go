package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/sync/errgroup"

	"github.com/javals/go-java-lsp/internal/rpc"
	"github.com/javals/go-java-lsp/internal/server"
)

const (
	name    = "go-java-lsp"
	version = "0.1.0"
)

var (
	tcpMode  bool
	tcpPort  int
	logLevel string
	logFile  string
)

func init() {
	flag.BoolVar(&tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	flag.IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with -tcp)")
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "%s version %s\n\n", name, version)
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", name)
	fmt.Fprintf(os.Stderr, "Language Server Protocol front-end for Java\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("%s version %s\n", name, version)
		os.Exit(0)
	}

	log := setupLogging()

	factory := func(client rpc.Client) rpc.LanguageServer {
		return server.New(client, commonlog.GetLogger(name+".server"))
	}

	if tcpMode {
		log.Noticef("starting TCP server on port %d", tcpPort)
		if err := runTCP(factory, fmt.Sprintf("127.0.0.1:%d", tcpPort)); err != nil {
			log.Criticalf("TCP server error: %s", err.Error())
			os.Exit(1)
		}
		return
	}

	log.Notice("starting STDIO server")
	if err := rpc.Connect(factory, os.Stdin, os.Stdout, rpc.Options{Logger: log}); err != nil {
		log.Criticalf("STDIO server error: %s", err.Error())
		os.Exit(1)
	}
}

// runTCP accepts debug connections and serves each on its own pair of
// goroutines until the listener fails.
func runTCP(factory func(rpc.Client) rpc.LanguageServer, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	defer listener.Close()

	var group errgroup.Group
	for {
		conn, err := listener.Accept()
		if err != nil {
			waitErr := group.Wait()
			if waitErr != nil {
				return waitErr
			}
			return err
		}

		group.Go(func() error {
			defer conn.Close()
			log := commonlog.GetLogger(name + "." + conn.RemoteAddr().String())
			return rpc.Connect(factory, conn, conn, rpc.Options{Logger: log})
		})
	}
}

// setupLogging configures the commonlog backend from the command-line flags
// and returns the root logger.
func setupLogging() commonlog.Logger {
	verbosity := 0
	switch logLevel {
	case "debug":
		verbosity = 2
	case "info":
		verbosity = 1
	}

	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbosity, path)

	return commonlog.GetLogger(name)
}
