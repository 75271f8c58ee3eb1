// cmd/coredbctl/main.go
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

func main() {
	port := flag.String("port", "54329", "port to connect to")
	host := flag.String("host", "localhost", "host to connect to")
	flag.Parse()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".coredb_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	serverAddr := *host + ":" + *port
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		fmt.Println("failed to connect:", err)
		return
	}
	defer conn.Close()

	serverReader := bufio.NewReader(conn)

	for {
		lineStr, err := serverReader.ReadString('\n')
		if err != nil {
			fmt.Println("connection closed")
			return
		}
		fmt.Print(lineStr)
		if strings.HasPrefix(lineStr, "coredb> ") {
			break
		}
	}

	for {
		input, err := line.Prompt("coredb> ")
		if err != nil {
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		fmt.Fprintln(conn, input)
		if strings.EqualFold(input, "exit") {
			break
		}

		for {
			respLine, err := serverReader.ReadString('\n')
			if err != nil {
				fmt.Println("connection closed")
				return
			}
			if strings.HasPrefix(respLine, "coredb> ") {
				break
			}
			fmt.Print(respLine)
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
