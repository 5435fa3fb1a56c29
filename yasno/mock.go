package yasno

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource serves group schedules from a JSON fixture using the same wire
// format as the live API. Used for local runs and the analyze command.
type FileSource struct {
	city   string
	groups map[string]wireGroup
}

// NewFileSource loads the fixture once at construction.
func NewFileSource(path, city string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var groups map[string]wireGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &FileSource{city: city, groups: groups}, nil
}

// Group returns the fixture schedule for the group.
func (s *FileSource) Group(_ context.Context, group string) (GroupSchedule, error) {
	g, ok := s.groups[group]
	if !ok {
		return GroupSchedule{}, &UnknownGroupError{Group: group, Available: groupNames(s.groups)}
	}
	return groupSchedule(s.city, group, g), nil
}
