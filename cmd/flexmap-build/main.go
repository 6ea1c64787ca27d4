// Command flexmap-build constructs a flexmap index from a reference FASTA
// file (-ref) or a FASTQ read set (-reads) and writes it to disk in
// flexmapfile format.
package main

import (
	"bytes"
	"context"
	"flag"
	"io"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/flexmap/encoding/fasta"
	"github.com/grailbio/flexmap/encoding/fastq"
	"github.com/grailbio/flexmap/encoding/flexmapfile"
	"github.com/grailbio/flexmap/flexmap"
)

func main() {
	var (
		refPath   = flag.String("ref", "", "path to the reference FASTA file")
		readsPath = flag.String("reads", "", "path to a FASTQ read set, instead of -ref, to index reads rather than reference contigs")
		outPath   = flag.String("out", "", "path to write the flexmapfile blob")
		coreLen   = flag.Int("core-len", flexmap.DefaultParams.C, "core (exact-match) k-mer length")
		flankLen  = flag.Int("flank-len", flexmap.DefaultParams.F, "total flanking length, split evenly around the core")
		bodySize  = flag.Int("body-size", flexmap.DefaultParams.B, "key slots per body, must be a power of two")
		headerMin = flag.Int("header-threshold", flexmap.DefaultParams.H, "regions with more occurrences than this get a flank header")
	)
	flag.Parse()

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if (*refPath == "") == (*readsPath == "") {
		log.Fatal("exactly one of -ref or -reads is required")
	}
	if *outPath == "" {
		log.Fatal("-out is required")
	}

	params := flexmap.Params{
		C: *coreLen, F: *flankLen, B: *bodySize, H: *headerMin,
		PosBits: flexmap.DefaultParams.PosBits, ValBits: flexmap.DefaultParams.ValBits,
	}
	if err := params.Validate(); err != nil {
		log.Fatalf("invalid parameters: %v", err)
	}

	log.Printf("flexmap-build: building index (C=%d F=%d B=%d H=%d)", params.C, params.F, params.B, params.H)
	builder := flexmap.NewBuilder(params)

	var (
		idx *flexmap.Index
		err error
	)
	if *refPath != "" {
		f1, f2, closeFasta := openIndexedFasta(ctx, *refPath)
		defer closeFasta()
		idx, err = builder.Build(fasta.NewSource(f1), fasta.NewSource(f2))
	} else {
		pass1, close1 := openFastqSource(ctx, *readsPath)
		defer close1()
		pass2, close2 := openFastqSource(ctx, *readsPath)
		defer close2()
		idx, err = builder.Build(pass1, pass2)
	}
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	log.Printf("flexmap-build: built index, values size = %d", idx.ValuesSize())

	writeIndex(ctx, *outPath, idx)
	log.Printf("flexmap-build: wrote %s", *outPath)
}

// openFastqSource opens an independent reader over the read set at path,
// returning a flexmap.RecordSource over it and a func to close the
// underlying file. Builder.Build needs two such sources, each starting from
// the beginning, one per pass, since fastq.Source is single-pass.
func openFastqSource(ctx context.Context, path string) (*fastq.Source, func()) {
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	scanner := fastq.NewScanner(in.Reader(ctx), fastq.ID|fastq.Seq)
	return fastq.NewSource(scanner), func() {
		if err := in.Close(ctx); err != nil {
			log.Fatalf("closing %s: %v", path, err)
		}
	}
}

// openIndexedFasta generates a *.fai index for the reference at path
// in-memory (fingerprinting the raw bytes with seahash while it does), then
// opens two independent fasta.Fasta handles against it with OptIndex:
// Builder's two passes each read every contig in full, and OptIndex is the
// entry point fasta.New documents for callers reading "many or all"
// sequences rather than a small random subset (NewIndexed's per-Get locking
// and re-seeking is built for the latter). Grounded on
// fusion/gene_db.go's ReadTranscriptome, which generates a temporary index
// once and opens independent indexed handles off it for each of its own
// re-reads. The returned cleanup closes both reference handles.
func openIndexedFasta(ctx context.Context, path string) (f1, f2 fasta.Fasta, cleanup func()) {
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	var idxBuf bytes.Buffer
	h := seahash.New()
	if err := fasta.GenerateIndex(&idxBuf, io.TeeReader(in.Reader(ctx), h)); err != nil {
		log.Fatalf("indexing %s: %v", path, err)
	}
	if err := in.Close(ctx); err != nil {
		log.Fatalf("closing %s: %v", path, err)
	}
	log.Printf("flexmap-build: reference %s checksum=%x", path, h.Sum64())
	index := idxBuf.Bytes()

	var ins []file.File
	open := func() fasta.Fasta {
		refIn, err := file.Open(ctx, path)
		if err != nil {
			log.Fatalf("opening %s: %v", path, err)
		}
		f, err := fasta.New(refIn.Reader(ctx), fasta.OptIndex(index))
		if err != nil {
			log.Fatalf("fasta.New %s: %v", path, err)
		}
		ins = append(ins, refIn)
		return f
	}
	f1, f2 = open(), open()

	return f1, f2, func() {
		for _, in := range ins {
			if err := in.Close(ctx); err != nil {
				log.Fatalf("closing %s: %v", path, err)
			}
		}
	}
}

func writeIndex(ctx context.Context, path string, idx *flexmap.Index) {
	out, err := file.Create(ctx, path)
	if err != nil {
		log.Fatalf("creating %s: %v", path, err)
	}
	if err := flexmapfile.Write(out.Writer(ctx), idx); err != nil {
		log.Fatalf("writing %s: %v", path, err)
	}
	if err := out.Close(ctx); err != nil {
		log.Fatalf("closing %s: %v", path, err)
	}
}
