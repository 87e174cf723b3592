package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Sonda minima para contenedores: GET /health y exit code segun respuesta.
func main() {
	url := flag.String("url", "http://localhost:8080/health", "endpoint de health a consultar")
	timeout := flag.Duration("timeout", 5*time.Second, "tiempo maximo de espera")
	flag.Parse()

	client := &http.Client{Timeout: *timeout}
	resp, err := client.Get(*url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "healthcheck: status %d: %s\n", resp.StatusCode, body)
		os.Exit(1)
	}
	fmt.Printf("%s\n", body)
}
