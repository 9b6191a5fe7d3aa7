package main

import (
	"fmt"
	"log"

	"github.com/ehotel/hotel-backend/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for eHotel")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateJWTSecret()
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Add this to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("Keep this secret out of version control.")
	fmt.Println("===========================================")
}
