package vdfbinary

import (
	"errors"
	"io"
	"strconv"
)

// Shortcut is one Steam non-Steam game shortcut.
type Shortcut struct {
	AppName  string
	Exe      string
	Icon     string
	StartDir string
	Tags     []string
	AppID    uint32
	IsHidden bool
}

// ParseShortcuts parses Steam's shortcuts.vdf binary format. Tags, icon, and
// IsHidden are treated as optional to handle shortcuts created by
// third-party tools like EmuDeck and Lutris.
func ParseShortcuts(buf io.Reader) ([]Shortcut, error) {
	vdf, err := Parse(buf)
	if err != nil {
		return []Shortcut{}, err
	}

	shortcutsMap, ok := vdf.GetMap("shortcuts")
	if !ok {
		return []Shortcut{}, errors.New("could not find 'shortcuts' in parsed vdf")
	}

	shortcuts := make([]Shortcut, len(shortcutsMap))

	for i := range shortcuts {
		key := strconv.Itoa(i)

		s, ok := shortcutsMap[key]
		if !ok {
			return []Shortcut{}, errors.New("vdf that should be an array does not have the corresponding index")
		}

		appID, ok := s.GetUint("appid")
		if !ok {
			return []Shortcut{}, errors.New("could not get key 'appid' for one of the shortcuts")
		}

		appName, ok := s.GetString("AppName")
		if !ok {
			return []Shortcut{}, errors.New("could not get key 'AppName' for one of the shortcuts")
		}

		exe, ok := s.GetString("Exe")
		if !ok {
			return []Shortcut{}, errors.New("could not get key 'Exe' for one of the shortcuts")
		}

		startDir, ok := s.GetString("StartDir")
		if !ok {
			return []Shortcut{}, errors.New("could not get key 'StartDir' for one of the shortcuts")
		}

		icon, _ := s.GetString("icon")
		isHidden, _ := s.GetBool("IsHidden")

		var tags []string
		if tagsMap, ok := s.GetMap("tags"); ok {
			for j := range len(tagsMap) {
				t, ok := tagsMap[strconv.Itoa(j)]
				if !ok {
					break
				}
				ts, ok := t.AsString()
				if !ok {
					continue
				}
				tags = append(tags, ts)
			}
		}

		shortcuts[i] = Shortcut{
			AppID:    appID,
			AppName:  appName,
			Exe:      exe,
			Icon:     icon,
			IsHidden: isHidden,
			StartDir: startDir,
			Tags:     tags,
		}
	}

	return shortcuts, nil
}
