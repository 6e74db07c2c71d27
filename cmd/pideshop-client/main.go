// pideshop-client fires a batch of randomly placed orders at the server
// and waits for the completion message. Ctrl-C cancels the batch.
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintf(os.Stderr, "usage: %s <port> <numberOfOrders> <p> <q>\n", os.Args[0])
		os.Exit(2)
	}
	port := mustAtoi(os.Args[1])
	numOrders := mustAtoi(os.Args[2])
	p := mustAtoi(os.Args[3])
	q := mustAtoi(os.Args[4])

	pid := os.Getpid()
	fmt.Printf("PID %d\n", pid)

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Server down. Unable to connect.")
		os.Exit(1)
	}
	defer conn.Close()

	// Ctrl-C cancels the remaining orders on the server side.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("signal: cancelling orders")
		fmt.Fprintf(conn, "TERMINATE %d\n", pid)
		conn.Close()
		os.Exit(0)
	}()

	fmt.Fprintf(conn, "%d %d\n", pid, numOrders)
	for i := 0; i < numOrders; i++ {
		x := rand.Intn(p)
		y := rand.Intn(q)
		fmt.Fprintf(conn, "%d %d %d\n", i, x, y)
	}

	resp := bufio.NewScanner(conn)
	if !resp.Scan() {
		fmt.Fprintln(os.Stderr, "connection closed before completion")
		os.Exit(1)
	}
	fmt.Println(resp.Text())
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		fmt.Fprintf(os.Stderr, "invalid argument %q\n", s)
		os.Exit(2)
	}
	return n
}
