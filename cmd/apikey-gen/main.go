package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"wallet-core.backend/pkg/crypto"
)

// Generates an API key plaintext plus the hash the server stores. Useful
// for seeding environments without going through the HTTP API.
func main() {
	count := flag.Int("count", 1, "number of keys to generate")
	flag.Parse()

	if *count <= 0 {
		log.Fatalf("invalid count: %d (must be positive)", *count)
	}

	for i := 0; i < *count; i++ {
		plain := "sk_live_" + strings.ReplaceAll(uuid.New().String(), "-", "")
		fmt.Printf("API_KEY=%s\n", plain)
		fmt.Printf("KEY_HASH=%s\n", crypto.SHA256Hex([]byte(plain)))
	}
}
