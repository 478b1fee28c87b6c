// Package snapshot computes the archive plan for the voxel-archive CLI.
//
// Planning is a pure function of a directory listing: the Planner reads
// entries from an fs.FS (os.DirFS in production, fstest.MapFS in tests),
// keeps the directories whose names match the snapshot pattern, orders
// them, and derives the next zero-padded version string. Nothing in this
// package writes to disk; the copy itself lives in internal/copier.
package snapshot
