package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/ini.v1"
)

const iniSection = "client"

// INI keeps the client store in an ini file, one key per entry under [client].
type INI struct {
	mu   sync.Mutex
	path string
	file *ini.File
}

// OpenINI loads path if it exists; the file is created on the first write.
func OpenINI(path string) (*INI, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	file := ini.Empty()
	if _, err := os.Stat(path); err == nil {
		file, err = ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return &INI{path: path, file: file}, nil
}

func (s *INI) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.file.Section(iniSection)
	if !sec.HasKey(key) {
		return "", false, nil
	}
	return sec.Key(key).String(), true, nil
}

func (s *INI) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.Section(iniSection).Key(key).SetValue(value)
	return s.save()
}

func (s *INI) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.file.Section(iniSection)
	if !sec.HasKey(key) {
		return nil
	}
	sec.DeleteKey(key)
	return s.save()
}

func (s *INI) Close() error { return nil }

// save writes a temp file and renames it over path.
func (s *INI) save() error {
	tmp := s.path + ".tmp"
	if err := s.file.SaveTo(tmp); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
