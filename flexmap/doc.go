// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package flexmap implements a compact, static, disk-serializable index
// mapping fixed-length DNA k-mers (in canonical form) to the genomic
// positions where they occur, optionally together with the flanking
// nucleotide context of each occurrence.
//
// The index has two parts. Keys is a direct-addressed table, one cell per
// possible k-mer core, grouped into fixed-size bodies that each share a
// 64-bit base offset. Values is a flat array of fixed-width cells holding
// per-core regions of occurrence positions, optionally prefixed by a
// flanking-sequence header. Builder drives a two-pass construction: pass one
// counts occurrences per core, pass two turns the counts into offsets
// (Keys.Seal) and then writes every occurrence into its region.
//
// The index is write-once: once Builder.Build returns, the result is
// read-only and safe for concurrent lookups via Index.Get.
package flexmap
