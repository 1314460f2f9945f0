// Package sheet loads variable definitions from sheet files.
//
// A sheet is a flat list of NAME = expression pairs. Two formats are
// understood:
//
//   - HCL (.hcl): every top-level attribute is a definition and the
//     expression is kept as written, so `D = B + C` defines D as "B + C".
//     Blocks are not allowed.
//   - TOML (.toml): every top-level key is a definition. String values are
//     expressions; integer and float values are constants. Tables and arrays
//     are not allowed.
//
// Definitions are returned in file order, and within a file in the order they
// appear, so applying them one by one with Put reproduces the sheet.
package sheet
