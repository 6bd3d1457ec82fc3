// Package journal records terminal pipeline outcomes in a local SQLite
// database for later inspection from the command line. The journal is
// write-only from the pipeline's point of view; no processing decision ever
// depends on it.
package journal
