// Package main mints admin bearer tokens for the relay's administrative
// endpoints. Run it out of band and hand the token to the operator:
//
//	ADMIN_SIGNING_KEY=... go run ./cmd/admin-token -operator alice
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/smsrelay/smsrelay/internal/auth"
)

func main() {
	_ = godotenv.Load()

	operator := flag.String("operator", "", "operator name embedded in the token")
	flag.Parse()

	if *operator == "" {
		fmt.Fprintln(os.Stderr, "error: -operator is required")
		flag.Usage()
		os.Exit(2)
	}

	signingKey := os.Getenv("ADMIN_SIGNING_KEY")
	if signingKey == "" {
		fmt.Fprintln(os.Stderr, "error: ADMIN_SIGNING_KEY is not set")
		os.Exit(2)
	}

	tokens := auth.NewService(auth.Config{SigningKey: signingKey})

	token, expiresAt, err := tokens.Mint(*operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: minting token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("token: %s\n", token)
	fmt.Printf("expires: %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
}
