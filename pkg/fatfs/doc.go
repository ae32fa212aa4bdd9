// Package fatfs implements a small FAT-style file system on top of a
// [vdisk.Device].
//
// The disk is a fixed array of blocks. Block 0 starts with the superblock,
// which holds the root directory record, followed by the allocation table.
// Every file and directory owns one chain of blocks linked through the
// table. A directory's content is the back-to-back encoding of its child
// [Entry] records.
//
// # Basic Usage
//
//	dev, _ := vdisk.NewMemory(vdisk.DefaultGeometry())
//	fsys, err := fatfs.Mount(dev, fatfs.Options{})
//	if err != nil {
//	    return err
//	}
//
//	_ = fsys.Mkdir("a/b/c")    // missing intermediates are created
//	_ = fsys.Chdir("a/b")
//	_, _ = fsys.Create("notes.txt")
//	entries, _ := fsys.List()
//	fmt.Println(fsys.Cwd()) // "/a/b"
//
// # Navigation
//
// The current directory is a [Stack] of records from the root down.
// [FS.Chdir] resolves on a copy and only replaces the stack on success.
// After every mutation the stack is rebuilt from the root by name so that
// cached records never go stale.
//
// # Durability
//
// Every mutating call leaves the device consistent: directory blocks are
// written through and the superblock and table are flushed before the call
// returns. Persisting the device itself (for example [vdisk.Image.Save]) is
// up to the caller.
//
// # Partial Failure
//
// Two failures leave visible state behind. Directories created for the
// intermediate segments of [FS.Mkdir] or [FS.Create] stay when the final
// step fails, and a [FS.Rewrite] that runs out of space leaves the blocks
// it already chained attached to the entry. Every other operation either
// completes or changes nothing.
//
// # Concurrency
//
// An [FS] is owned by one goroutine. It has no internal locking.
package fatfs
