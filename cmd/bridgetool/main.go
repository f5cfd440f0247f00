// Command bridgetool loads a flat binary victim image, builds a bridge
// in front of it, and dumps the bridge's bytes -- a raw diagnostic tool
// in the same spirit as run68, which loaded an image and drove it
// straight through the CPU from the command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"unsafe"

	"github.com/nullterm/bridgebuilder/bridge"
	"github.com/nullterm/bridgebuilder/codepool"
)

var (
	destroy = flag.Bool("destroy", false, "destroy the bridge immediately after building it")
)

func main() {
	log.SetFlags(0)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Println("Usage: bridgetool [options] <victim.bin>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	code, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("couldn't read victim image: %v", err)
	}

	victim, err := loadVictim(code)
	if err != nil {
		log.Fatalf("couldn't stage victim in executable memory: %v", err)
	}
	defer codepool.Free(victim)

	bridgePtr, err := bridge.Create(victim)
	if err != nil {
		log.Fatalf("bridge build failed: %v", err)
	}

	log.Printf("victim at 0x%08X, bridge at 0x%08X", victim, bridgePtr)
	dumpBridge(bridgePtr, len(code))

	if *destroy {
		bridge.Destroy(bridgePtr)
		log.Println("bridge destroyed")
	}
}

// loadVictim copies code into a pool-owned slice so bridge.Create has a
// real executable address to read a prologue from. Real hooking targets
// are already resident code; this tool manufactures one from a file.
func loadVictim(code []byte) (uintptr, error) {
	size := len(code)
	if size > 32 {
		size = 32
	}
	if size == 0 {
		return 0, fmt.Errorf("empty victim image")
	}

	ptr, err := codepool.Alloc(size)
	if err != nil {
		return 0, err
	}

	codepool.Unlock(ptr)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	copy(dst, code)
	codepool.Lock(ptr)

	return ptr, nil
}

// dumpBridge prints n bytes starting at ptr. n is an estimate, not the
// exact bridge length Create chose; it is clipped at the end of the pool
// page holding ptr, so any overrun stays within mapped memory.
func dumpBridge(ptr uintptr, prologueHint int) {
	n := prologueHint + 5
	if pageEnd := (ptr | uintptr(os.Getpagesize()-1)) + 1; ptr+uintptr(n) > pageEnd {
		n = int(pageEnd - ptr)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n)
	for i, by := range b {
		fmt.Printf("%02X ", by)
		if (i+1)%16 == 0 {
			fmt.Println()
		}
	}
	fmt.Println()
}
