// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"log"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"ysr/internal/config"
	"ysr/internal/lsp"
)

const lsName = "ysr" // Name identifier for the language server

var (
	version = "0.0.1"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	configPath := flag.String("config", "", "HCL project file providing seed variables and include directories.")
	verbosity := flag.Int("v", 1, "Log verbosity.")
	flag.Parse()

	// Logs go to stderr; stdout carries the protocol
	commonlog.Configure(*verbosity, nil)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Println("Error loading project file:", err)
			os.Exit(2)
		}
		cfg = loaded
	}

	ysrHandler := lsp.NewHandler(cfg.Project(), cfg.Options()...)

	// Wire up the handler with specific LSP method implementations
	handler = protocol.Handler{
		Initialize:                     ysrHandler.Initialize,
		Initialized:                    ysrHandler.Initialized,
		Shutdown:                       ysrHandler.Shutdown,
		SetTrace:                       ysrHandler.SetTrace,
		TextDocumentDidOpen:            ysrHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           ysrHandler.TextDocumentDidClose,
		TextDocumentDidChange:          ysrHandler.TextDocumentDidChange,
		TextDocumentDocumentSymbol:     ysrHandler.TextDocumentDocumentSymbol,
		TextDocumentSemanticTokensFull: ysrHandler.TextDocumentSemanticTokensFull,
	}

	// - debug: whether to enable internal GLSP debug logs
	s := server.NewServer(&handler, lsName, false)

	log.Printf("Starting ysr LSP server %s...", version)

	// Start the server over standard input/output (used by most editors for LSP)
	err := s.RunStdio()
	if err != nil {
		log.Println("Error starting ysr LSP server:", err)
		os.Exit(1)
	}
}
