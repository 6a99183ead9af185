// zipper - block-oriented binary patch generator
//
// Usage:
//
//	zipper [flags] <reference.bin> <target.bin>
//
// Flags:
//
//	-block int     Block size in bytes, a multiple of 8 up to 248 (default 64)
//	-out string    Patch output path (default "<reference stem>_patch.bin")
//	-config string Path to a JSON config file (default "zipper.json")
//	-version       Show version and exit
//
// Environment: ZIPPER_BLOCK, ZIPPER_PATCH_OUT, ZIPPER_CONFIG.
// Flags take precedence over environment variables, which take
// precedence over the config file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/zissis-pap/zipper/internal/config"
	"github.com/zissis-pap/zipper/internal/container"
	"github.com/zissis-pap/zipper/internal/patch"
	"github.com/zissis-pap/zipper/internal/version"
)

func main() {
	configPath := flag.String("config", env.Str("ZIPPER_CONFIG", "zipper.json"), "Path to JSON config file")
	blockSize := flag.Int("block", env.Int("ZIPPER_BLOCK", 0), "Block size in bytes (multiple of 8, max 248)")
	outPath := flag.String("out", env.Str("ZIPPER_PATCH_OUT", ""), "Patch output path")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("zipper v%s (built %s)\n", version.Version, version.BuildTime)
		return
	}

	if flag.NArg() != 2 {
		log.Fatalf("usage: zipper [flags] <reference.bin> <target.bin>")
	}
	refPath := flag.Arg(0)
	targetPath := flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", *configPath, err)
	}
	if *blockSize == 0 {
		*blockSize = cfg.BlockSize
	}
	if *outPath == "" {
		*outPath = stem(refPath) + cfg.PatchSuffix
	}

	ref, err := os.ReadFile(refPath)
	if err != nil {
		log.Fatalf("failed to read reference: %v", err)
	}
	target, err := os.ReadFile(targetPath)
	if err != nil {
		log.Fatalf("failed to read target: %v", err)
	}

	log.Printf("reference: %s (%d bytes)", refPath, len(ref))
	log.Printf("target:    %s (%d bytes)", targetPath, len(target))
	log.Printf("building patch (block size %d)...", *blockSize)

	raw, stats, err := patch.Encode(ref, target, *blockSize)
	if err != nil {
		log.Fatalf("encode failed: %v", err)
	}

	file := container.Wrap(raw, target)
	if err := os.WriteFile(*outPath, file, 0644); err != nil {
		log.Fatalf("failed to write patch: %v", err)
	}

	log.Printf("blocks: %d (match %d, relocated %d, delta %d, insert %d), tail %d bytes",
		stats.Blocks, stats.Matches, stats.Relocated, stats.Deltas, stats.Inserts, stats.TailBytes)
	if len(target) > 0 {
		ratio := (1 - float64(len(file))/float64(len(target))) * 100
		log.Printf("patch: %s (%d bytes, %.1f%% smaller than target)", *outPath, len(file), ratio)
	} else {
		log.Printf("patch: %s (%d bytes)", *outPath, len(file))
	}
}

// stem returns path without its final extension.
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
