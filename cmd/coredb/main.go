// cmd/coredb/main.go
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/coredbio/coredb/internal/engine"
	"github.com/coredbio/coredb/internal/sql"
)

func main() {
	dataDir := flag.String("data-dir", "./data", "directory holding the catalog and table heap files")
	port := flag.String("port", "54329", "port to listen on")
	flag.Parse()

	db := engine.Open(*dataDir)

	listener, err := net.Listen("tcp", ":"+*port)
	if err != nil {
		log.Fatalf("failed to listen on port %s: %v", *port, err)
	}
	defer listener.Close()
	fmt.Printf("coredb listening on port %s (data dir: %s)\n", *port, *dataDir)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("accept error: %v", err)
			continue
		}
		go handleConnection(conn, db)
	}
}

// handleConnection runs one client's command loop. Execute itself
// serializes access to the shared Database, so concurrent connections
// never interleave mid-command.
func handleConnection(conn net.Conn, db *engine.Database) {
	defer conn.Close()
	fmt.Fprintln(conn, "Welcome to coredb")

	scanner := bufio.NewScanner(conn)
	for {
		fmt.Fprint(conn, "coredb> \n")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			fmt.Fprintln(conn, "bye")
			return
		}

		cmd, err := sql.Parse(input)
		if err != nil {
			fmt.Fprintf(conn, "error: %v\n", err)
			continue
		}
		result, err := db.Execute(cmd)
		if err != nil {
			fmt.Fprintf(conn, "error: %v\n", err)
			continue
		}
		writeResult(conn, result)
	}
}

func writeResult(conn net.Conn, result engine.Result) {
	if !result.IsData {
		fmt.Fprintln(conn, result.Message)
		return
	}
	fmt.Fprintln(conn, strings.Join(result.Columns, " | "))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, f := range row {
			cells[i] = f.String()
		}
		fmt.Fprintln(conn, strings.Join(cells, " | "))
	}
}
