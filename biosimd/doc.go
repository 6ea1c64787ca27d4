// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package biosimd provides byte-array cleanup primitives for nucleotide
// sequence loading: capitalizing ACGT and masking non-ACGT characters.
package biosimd
