package testutil

// Seed bundles a human-readable name with seed bytes.
//
// Curated seed sequences are hand-crafted to exercise specific scenarios that
// random fuzzing might take a long time to discover. Each seed produces a
// deterministic sequence of operations when fed to OpGenerator with
// [DefaultOpGenConfig].
type Seed struct {
	Name string
	Data []byte
}

// CuratedSeeds returns all curated seeds with descriptive names.
func CuratedSeeds() []Seed {
	return []Seed{
		{Name: "nested_create", Data: SeedNestedCreate()},
		{Name: "remove_subtree", Data: SeedRemoveSubtree()},
		{Name: "protected_rmdir", Data: SeedProtectedRmdir()},
		{Name: "base_name_collision", Data: SeedBaseNameCollision()},
		{Name: "directory_full", Data: SeedDirectoryFull()},
		{Name: "format_reset", Data: SeedFormatReset()},
		{Name: "invalid_paths", Data: SeedInvalidPaths()},
	}
}

func defaultSeedConfig() *OpGenConfig {
	cfg := DefaultOpGenConfig()

	return &cfg
}

// SeedNestedCreate creates files below missing directories and walks into
// them.
func SeedNestedCreate() []byte {
	return NewSeedBuilder(defaultSeedConfig()).
		Create("a/b/c.txt").
		Chdir("a/b").
		List().
		Chdir("../..").
		Mkdir("/b/a").
		List().
		Bytes()
}

// SeedRemoveSubtree removes a directory holding files and subdirectories.
func SeedRemoveSubtree() []byte {
	return NewSeedBuilder(defaultSeedConfig()).
		Mkdir("a/a/a").
		Create("a/c.txt").
		Create("a/a/b.md").
		Rmdir("a").
		List().
		Bytes()
}

// SeedProtectedRmdir tries to remove the root, the current directory and an
// ancestor reached through "..".
func SeedProtectedRmdir() []byte {
	return NewSeedBuilder(defaultSeedConfig()).
		Mkdir("a/b").
		Chdir("a/b").
		Rmdir("/").
		Rmdir(".").
		Rmdir("..").
		Rmdir("/a").
		Chdir("/").
		Rmdir("a/b").
		List().
		Bytes()
}

// SeedBaseNameCollision creates entries whose base names clash across
// extensions and kinds.
func SeedBaseNameCollision() []byte {
	return NewSeedBuilder(defaultSeedConfig()).
		Create("b.md").
		Mkdir("b").
		Create("c.txt").
		Remove("c.txt").
		Create("c.txt").
		Remove("b").
		List().
		Bytes()
}

// SeedDirectoryFull fills one directory with every distinct valid base name
// and then some.
func SeedDirectoryFull() []byte {
	return NewSeedBuilder(defaultSeedConfig()).
		Mkdir("a").
		Create("b.md").
		Create("c.txt").
		Mkdir("a/a").
		Mkdir("a/b").
		Mkdir("a/c.txt").
		Create("a/b.md").
		List().
		Bytes()
}

// SeedFormatReset formats from deep inside a tree.
func SeedFormatReset() []byte {
	return NewSeedBuilder(defaultSeedConfig()).
		Mkdir("a/b/a/b").
		Chdir("a/b/a").
		Format().
		List().
		Chdir("a").
		Bytes()
}

// SeedInvalidPaths feeds names and paths that fail validation.
func SeedInvalidPaths() []byte {
	return NewSeedBuilder(defaultSeedConfig()).
		Mkdir("longer-than-15-chars").
		Create(".x").
		Mkdir("a/").
		Create("..").
		Chdir("a/b/c.txt/a").
		Remove("/").
		List().
		Bytes()
}
