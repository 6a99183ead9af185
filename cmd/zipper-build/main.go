// zipper-build - reconstruct a target file from a reference and a patch
//
// Usage:
//
//	zipper-build [flags] <reference.bin> <patch.bin>
//
// Flags:
//
//	-out string    Output path for the reconstructed file (default "rebuilt.bin")
//	-config string Path to a JSON config file (default "zipper.json")
//	-version       Show version and exit
//
// Environment: ZIPPER_OUT, ZIPPER_CONFIG. Flags take precedence over
// environment variables, which take precedence over the config file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/zissis-pap/zipper/internal/config"
	"github.com/zissis-pap/zipper/internal/container"
	"github.com/zissis-pap/zipper/internal/patch"
	"github.com/zissis-pap/zipper/internal/version"
)

func main() {
	configPath := flag.String("config", env.Str("ZIPPER_CONFIG", "zipper.json"), "Path to JSON config file")
	outPath := flag.String("out", env.Str("ZIPPER_OUT", ""), "Output path for the reconstructed file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("zipper-build v%s (built %s)\n", version.Version, version.BuildTime)
		return
	}

	if flag.NArg() != 2 {
		log.Fatalf("usage: zipper-build [flags] <reference.bin> <patch.bin>")
	}
	refPath := flag.Arg(0)
	patchPath := flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", *configPath, err)
	}
	if *outPath == "" {
		*outPath = cfg.RebuildOutput
	}

	ref, err := os.ReadFile(refPath)
	if err != nil {
		log.Fatalf("failed to read reference: %v", err)
	}
	file, err := os.ReadFile(patchPath)
	if err != nil {
		log.Fatalf("failed to read patch: %v", err)
	}

	raw, crc, err := container.Split(file)
	if err != nil {
		log.Fatalf("invalid patch file: %v", err)
	}

	log.Printf("reference: %s (%d bytes)", refPath, len(ref))
	log.Printf("patch:     %s (raw %d bytes, block size %d)", patchPath, len(raw), raw[0])
	log.Printf("applying patch...")

	out, err := patch.ApplyVerified(raw, ref, crc)
	if err != nil {
		log.Fatalf("apply failed: %v", err)
	}
	log.Printf("CRC-32 OK (0x%08X)", crc)

	if err := os.WriteFile(*outPath, out, 0644); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}
	log.Printf("reconstructed: %s (%d bytes)", *outPath, len(out))
}
