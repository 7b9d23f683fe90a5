// Package pkg provides the core libraries for converting LaTeX tsumego
// collections to SGF.
//
// # Overview
//
// The pkg directory is organized along the conversion pipeline:
//
//  1. [gooe] - Scanning and parsing of gooe diagram blocks in LaTeX sources
//  2. [board] - The position model shared by the parser and the SGF layer
//  3. [sgf] - SGF serialization, parsing, and collection merging
//  4. [render] - Image previews via the external sgf-render tool
//  5. [pipeline] - Orchestration (extract → build → serialize → render)
//
// # Architecture
//
// The typical data flow:
//
//	LaTeX source (.tex)
//	         ↓
//	gooe.Extract / gooe.Parse   →  board.Board
//	         ↓
//	sgf.FromBoard / Serialize   →  one .sgf per problem
//	         ↓
//	render.Renderer (optional)  →  .svg previews
//
// Supporting packages: [cache] stores rendered artifacts by content hash,
// [collection] loads per-collection comments, [errors] carries coded
// errors across the pipeline, and [buildinfo] holds version metadata.
package pkg
