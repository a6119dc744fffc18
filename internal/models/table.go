package models

// TableResult describes one table file written by a run
type TableResult struct {
	Region string
	Rows   int
	Path   string
	Bytes  int
}
