// The nttrom command generates the twiddle ROM contents consumed by an
// in-place NTT datapath: one .mem file per transform direction in Verilog
// $readmemh format, plus a JSON manifest carrying the parameters and the
// blake3 checksum of every emitted file.
//
// The roots are emitted in Montgomery form, matching what the butterflies
// consume directly; -raw converts them back to standard form.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/tuneinsight/nttgen/addrgen"
	"github.com/tuneinsight/nttgen/ring"
	"github.com/tuneinsight/nttgen/trace"
)

type romFile struct {
	Name   string
	Words  int
	Blake3 string
}

type manifest struct {
	Parameters ring.ParametersLiteral
	Montgomery bool
	Files      []romFile
}

func main() {

	var (
		logN    = flag.Int("logn", addrgen.LogN, "log2 of the transform size")
		modulus = flag.Uint64("q", 0x10001, "NTT-friendly modulus, must be 1 mod 2N")
		outDir  = flag.String("out", ".", "output directory")
		raw     = flag.Bool("raw", false, "emit the roots in standard form instead of Montgomery form")
		sched   = flag.Bool("schedule", false, "print the address schedule summary of the transform passes")
	)
	flag.Parse()

	params, err := ring.NewParametersFromLiteral(ring.ParametersLiteral{LogN: *logN, Modulus: *modulus})
	if err != nil {
		log.Fatal(err)
	}

	tbl, err := ring.NewTableFromParameters(params)
	if err != nil {
		log.Fatal(err)
	}

	m := manifest{Parameters: params.ParametersLiteral(), Montgomery: !*raw}

	for _, rom := range []struct {
		name  string
		roots []uint64
	}{
		{"roots_forward.mem", tbl.RootsForward},
		{"roots_backward.mem", tbl.RootsBackward},
	} {
		sum, err := writeROM(filepath.Join(*outDir, rom.name), rom.roots, tbl, *raw)
		if err != nil {
			log.Fatal(err)
		}

		m.Files = append(m.Files, romFile{Name: rom.name, Words: len(rom.roots), Blake3: sum})
	}

	p, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	manifestPath := filepath.Join(*outDir, "manifest.json")
	if err := os.WriteFile(manifestPath, p, 0o644); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("wrote %d ROM files and %s for N=%d q=%d\n", len(m.Files), manifestPath, params.N(), params.Modulus())

	if *sched {
		printSchedule()
	}
}

// writeROM writes one root table as $readmemh lines, one zero-padded hex
// word per line, and returns the blake3 checksum of the file contents.
func writeROM(path string, roots []uint64, tbl *ring.Table, raw bool) (string, error) {

	digits := (bits.Len64(tbl.Modulus-1) + 3) >> 2

	var sb strings.Builder
	for _, r := range roots {
		if raw {
			r = ring.IMForm(r, tbl.Modulus, tbl.MRedConstant)
		}
		fmt.Fprintf(&sb, "%0*x\n", digits, r)
	}

	data := []byte(sb.String())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	sum := blake3.Sum256(data)

	return hex.EncodeToString(sum[:]), nil
}

// printSchedule records one full pass per transform direction on the
// 256-point engine and prints its schedule summary and fingerprint.
func printSchedule() {

	for _, mode := range []addrgen.Mode{addrgen.ForwardNTT, addrgen.InverseNTT} {

		t, err := trace.NewRecorder().RecordPass(mode, addrgen.Standard)
		if err != nil {
			log.Fatal(err)
		}

		rep, err := trace.NewReport(t)
		if err != nil {
			log.Fatal(err)
		}

		d, err := t.Digest()
		if err != nil {
			log.Fatal(err)
		}

		fmt.Print(rep)
		fmt.Printf("digest=%x\n", d[:8])
	}
}
