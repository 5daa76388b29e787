package tutorial

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ContentLoader syncs markdown tutorial files from a directory into the
// store and reloads them when they change on disk.
type ContentLoader struct {
	dir      string
	store    *Store
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
	timer    *time.Timer
	stopCh   chan struct{}
}

// NewContentLoader creates a loader for the given content directory.
func NewContentLoader(dir string, store *Store, logger zerolog.Logger) (*ContentLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("content directory is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	return &ContentLoader{
		dir:      dir,
		store:    store,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}, nil
}

// Load parses every markdown file in the content directory and upserts
// the resulting tutorials.
func (l *ContentLoader) Load() (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read content directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return loaded, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		tutorial := parseMarkdown(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())), string(data))
		if err := l.store.UpsertTutorial(tutorial); err != nil {
			return loaded, err
		}
		loaded++
	}

	l.logger.Info().Int("tutorials", loaded).Str("dir", l.dir).Msg("Tutorial content loaded")
	return loaded, nil
}

// Watch reloads content whenever markdown files in the directory
// change. Events are debounced so one save triggers one reload.
func (l *ContentLoader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}
	l.watcher = watcher

	go l.run()
	return nil
}

// Stop stops the content watcher.
func (l *ContentLoader) Stop() error {
	close(l.stopCh)
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

func (l *ContentLoader) run() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(strings.ToLower(event.Name), ".md") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				l.logger.Debug().
					Str("file", filepath.Base(event.Name)).
					Str("op", event.Op.String()).
					Msg("Tutorial content change detected")
				l.scheduleReload()
			}

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Error().Err(err).Msg("Content watcher error")

		case <-l.stopCh:
			return
		}
	}
}

func (l *ContentLoader) scheduleReload() {
	if l.timer != nil {
		l.timer.Stop()
	}

	l.timer = time.AfterFunc(l.debounce, func() {
		if _, err := l.Load(); err != nil {
			l.logger.Error().Err(err).Msg("Tutorial content reload failed")
		}
	})
}

// parseMarkdown splits a markdown document into a tutorial. The first
// "# " heading is the title, the text before the first "## " heading is
// the description, and each "## " heading starts a section.
func parseMarkdown(id, content string) Tutorial {
	tutorial := Tutorial{
		ID:            id,
		Title:         id,
		Level:         LevelBeginner,
		Prerequisites: []string{},
	}

	var description []string
	var sections []Section
	var current *Section

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimRight(rawLine, "\r")

		switch {
		case strings.HasPrefix(line, "# ") && tutorial.Title == id && len(sections) == 0:
			tutorial.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
		case strings.HasPrefix(line, "## "):
			sections = append(sections, Section{
				ID:         fmt.Sprintf("%s-%d", id, len(sections)+1),
				TutorialID: id,
				Title:      strings.TrimSpace(strings.TrimPrefix(line, "## ")),
				Position:   len(sections) + 1,
			})
			current = &sections[len(sections)-1]
		case current != nil:
			current.Content += line + "\n"
		default:
			if strings.TrimSpace(line) != "" {
				description = append(description, strings.TrimSpace(line))
			}
		}
	}

	for i := range sections {
		sections[i].Content = strings.TrimSpace(sections[i].Content)
	}

	tutorial.Description = strings.Join(description, " ")
	tutorial.Sections = sections
	return tutorial
}
