// Package io provides JSON import of commit histories and import/export of
// laid out scenes.
//
// # Commit Documents
//
// A commit document is the boundary with the upstream revision walker. It
// lists commits in walk order (newest first) with their lane assignment:
//
//	{
//	  "commits": [
//	    {"hash": "a1b2c3d4", "message": "merge feature", "lane": 0,
//	     "refs": ["HEAD", "refs/remotes/origin/main"], "parents": ["e5f6a7b8", "c9d0e1f2"]},
//	    {"hash": "c9d0e1f2", "message": "feature work", "lane": 1, "parents": ["e5f6a7b8"]},
//	    {"hash": "e5f6a7b8", "message": "initial", "lane": 0, "boundary": true}
//	  ]
//	}
//
// # Commit Fields
//
// Required:
//   - hash: Hexadecimal object name, unique within the document
//
// Optional:
//   - message: Short message drawn next to the dot
//   - lane: Column position (null or absent means no connecting lines)
//   - active: Pre-marked as part of the checked-out history
//   - boundary: Known but not walked; drawn as a passive marker
//   - parents, children: Hashes of linked commits
//   - refs: Attached ref names, in decoration order
//
// # Import
//
// Use [ImportCommits] to read from a file path, or [ReadCommits] to read
// from any io.Reader:
//
//	seq, stats, err := io.ImportCommits("history.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Errors carry codes from [errors] so the CLI and API can report them
// uniformly.
//
// # Scenes
//
// [WriteScene], [ExportScene], [ReadScene] and [ImportScene] move laid out
// scenes in and out of the wire format defined by package scene. A scene
// read back from disk can be painted without repeating the layout.
//
// [errors]: github.com/matzehuels/historygraph/pkg/errors
package io
