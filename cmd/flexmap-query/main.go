// Command flexmap-query looks up a single k-mer in a flexmapfile blob and
// prints the positions (and flanking sequence, if recorded) of every
// occurrence of its canonical core.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/flexmap/encoding/flexmapfile"
	"github.com/grailbio/flexmap/flexmap"
	"github.com/grailbio/flexmap/kmer"
)

func main() {
	var (
		indexPath = flag.String("index", "", "path to a flexmapfile blob written by flexmap-build")
		query     = flag.String("kmer", "", "the k-mer to look up, same length as the index's K=C+F")
	)
	flag.Parse()

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if *indexPath == "" || *query == "" {
		log.Fatal("both -index and -kmer are required")
	}

	idx := loadIndex(ctx, *indexPath)
	params := idx.Params()
	if len(*query) != params.K() {
		log.Fatalf("-kmer has length %d, index expects K=%d", len(*query), params.K())
	}

	seq := kmer.Sequence{SeqName: "query", Bases: *query}
	if !seq.ValidExtended() {
		log.Fatalf("-kmer %q contains a non-nucleotide symbol", *query)
	}
	it := seq.Kmerizer(params.K())
	if !it.Scan() {
		log.Fatalf("-kmer %q contains an ambiguous base, no canonical k-mer to look up", *query)
	}

	core := flexmap.Core(flexmap.Canonical(it.Forward(), it.ReverseComplement()), params.C, params.F)
	region, ok := idx.Get(core)
	if !ok {
		fmt.Printf("%s: no occurrences\n", *query)
		return
	}

	fmt.Printf("%s: %d occurrence(s)\n", *query, region.Len())
	for i := 0; i < region.Len(); i++ {
		val, pos, ok := region.Position(i, params.PosBits, params.ValBits)
		if !ok {
			continue
		}
		if region.HasHeader() {
			fmt.Printf("  pos=%d val=%d flank=0x%08x\n", pos, val, region.Flank(i))
		} else {
			fmt.Printf("  pos=%d val=%d\n", pos, val)
		}
	}
}

func loadIndex(ctx context.Context, path string) *flexmap.Index {
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Fatalf("opening %s: %v", path, err)
	}
	defer func() {
		if err := in.Close(ctx); err != nil {
			log.Fatalf("closing %s: %v", path, err)
		}
	}()
	idx, err := flexmapfile.Read(in.Reader(ctx))
	if err != nil {
		log.Fatalf("reading %s: %v", path, err)
	}
	return idx
}
