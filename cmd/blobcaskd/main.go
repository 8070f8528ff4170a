/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/kindlewave/blobcask/cmd/blobcaskd/cmd"

func main() {
	cmd.Execute()
}
