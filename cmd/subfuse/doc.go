// Command subfuse is the command-line entrypoint for the bilingual subtitle
// pipeline: process a video, inspect the outcome journal, check external
// dependencies, and manage configuration.
package main
