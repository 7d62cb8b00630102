// Command docstore reads, writes and deletes Firestore documents and collections.
//
//	docstore set users alice --data '{"name":"Alice"}'
//	docstore get users alice
//	docstore drop users --batch-size 100
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/illmade-knight/go-docstore/pkg/docstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCmd(docstore.Connect, docstore.ConnectDatabaseManager)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
