package config_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vfat/internal/config"
	"github.com/calvinalkan/vfat/pkg/fatfs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// isolated returns a LoadInput with an empty HOME so the developer's global
// config never leaks into a test.
func isolated(t *testing.T) (config.LoadInput, string) {
	t.Helper()

	dir := t.TempDir()

	return config.LoadInput{
		WorkDir: dir,
		Env:     map[string]string{"HOME": filepath.Join(dir, "home")},
	}, dir
}

func Test_Load_Returns_Defaults_When_No_Config_Files(t *testing.T) {
	t.Parallel()

	in, dir := isolated(t)

	cfg, err := config.Load(in)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data"), cfg.ImageAbs)
	assert.Equal(t, fatfs.DefaultMaxEntries, cfg.MaxEntries)
	assert.Equal(t, fatfs.DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, fatfs.DefaultMaxSegments, cfg.MaxSegments)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.HistoryFileAbs)
	assert.Equal(t, config.Sources{}, cfg.Sources)
}

func Test_Load_Applies_Layers_In_Precedence_Order_When_All_Present(t *testing.T) {
	t.Parallel()

	in, dir := isolated(t)
	in.Env["XDG_CONFIG_HOME"] = filepath.Join(dir, "xdg")

	global := filepath.Join(dir, "xdg", "vfat", "config.json")
	writeFile(t, global, `{"image": "global.img", "max_entries": 7, "log_level": "info"}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{
		// project wins over global
		"image": "project.img",
		"max_depth": 5,
	}`)

	cfg, err := config.Load(in)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "project.img"), cfg.ImageAbs)
	assert.Equal(t, 7, cfg.MaxEntries)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, global, cfg.Sources.Global)
	assert.Equal(t, filepath.Join(dir, config.FileName), cfg.Sources.Project)

	in.ImageOverride = "/abs/flag.img"
	in.Verbose = true

	cfg, err = config.Load(in)
	require.NoError(t, err)

	assert.Equal(t, "/abs/flag.img", cfg.ImageAbs)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func Test_Load_Uses_Explicit_File_Instead_Of_Project_File_When_ConfigPath_Set(t *testing.T) {
	t.Parallel()

	in, dir := isolated(t)
	writeFile(t, filepath.Join(dir, config.FileName), `{"image": "project.img", "max_depth": 3}`)
	writeFile(t, filepath.Join(dir, "custom.json"), `{"image": "custom.img", "history_file": "hist"}`)

	in.ConfigPath = "custom.json"

	cfg, err := config.Load(in)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "custom.img"), cfg.ImageAbs)
	assert.Equal(t, filepath.Join(dir, "hist"), cfg.HistoryFileAbs)
	assert.Equal(t, fatfs.DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, filepath.Join(dir, "custom.json"), cfg.Sources.Project)
}

func Test_Load_Returns_ErrConfigFileNotFound_When_Explicit_File_Missing(t *testing.T) {
	t.Parallel()

	in, _ := isolated(t)
	in.ConfigPath = "missing.json"

	_, err := config.Load(in)
	require.ErrorIs(t, err, config.ErrConfigFileNotFound)
}

func Test_Load_Returns_Error_When_Config_Is_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "BrokenJSONC", content: `{"image": `, want: config.ErrConfigInvalid},
		{name: "WrongType", content: `{"max_entries": "many"}`, want: config.ErrConfigInvalid},
		{name: "ExplicitEmptyImage", content: `{"image": ""}`, want: config.ErrImagePathEmpty},
		{name: "EntriesTooLarge", content: `{"max_entries": 5000}`, want: config.ErrLimitOutOfRange},
		{name: "NegativeDepth", content: `{"max_depth": -1}`, want: config.ErrLimitOutOfRange},
		{name: "NegativeSegments", content: `{"max_segments": -2}`, want: config.ErrLimitOutOfRange},
		{name: "UnknownLevel", content: `{"log_level": "loud"}`, want: config.ErrLogLevelInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in, dir := isolated(t)
			writeFile(t, filepath.Join(dir, config.FileName), tt.content)

			_, err := config.Load(in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func Test_Load_Returns_ErrImagePathEmpty_When_Global_Sets_Empty_Image(t *testing.T) {
	t.Parallel()

	in, dir := isolated(t)
	writeFile(t, filepath.Join(dir, "home", ".config", "vfat", "config.json"), `{"image": ""}`)

	_, err := config.Load(in)
	require.ErrorIs(t, err, config.ErrConfigInvalid)
	require.ErrorIs(t, err, config.ErrImagePathEmpty)
}

func Test_SlogLevel_Maps_Names_When_Valid(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := config.Config{LogLevel: name}.SlogLevel()
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := config.Config{LogLevel: "WARN+2"}.SlogLevel()
	require.ErrorIs(t, err, config.ErrLogLevelInvalid)
}

func Test_FsOptions_Carries_Limits_When_Called(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.MaxEntries = 3

	opts := cfg.FsOptions()

	assert.Equal(t, 3, opts.MaxEntries)
	assert.Equal(t, fatfs.DefaultMaxDepth, opts.MaxDepth)
	assert.Equal(t, fatfs.DefaultMaxSegments, opts.MaxSegments)
}

func Test_Schema_Describes_Config_File_Fields_When_Generated(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(config.Schema())
	require.NoError(t, err)

	var doc struct {
		Title      string                    `json:"title"`
		Properties map[string]map[string]any `json:"properties"`
	}

	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "vfat configuration", doc.Title)

	for _, key := range []string{"image", "history_file", "max_entries", "max_depth", "max_segments", "log_level", "otlp_endpoint"} {
		assert.Contains(t, doc.Properties, key)
	}

	assert.NotContains(t, doc.Properties, "ImageAbs")
	assert.NotContains(t, doc.Properties, "Sources")
	assert.InDelta(t, float64(fatfs.MaxEntriesLimit), doc.Properties["max_entries"]["maximum"], 0)
}
