package scenes

import (
	"encoding/json"

	"github.com/automoto/rtspawn/logging"
	"github.com/quasilyte/gdata"
)

// SavedSettings is what the viewer remembers between runs.
type SavedSettings struct {
	Address    string `json:"address"`
	PlayerName string `json:"playerName"`
}

var gdataManager *gdata.Manager

// InitPersistence opens the per-user data directory for the viewer.
func InitPersistence() error {
	m, err := gdata.Open(gdata.Config{
		AppName: "rtspawn",
	})
	if err != nil {
		return err
	}
	gdataManager = m
	return nil
}

// LoadSettings returns nil when persistence is unavailable or nothing has
// been saved yet.
func LoadSettings() *SavedSettings {
	if gdataManager == nil {
		return nil
	}

	data, err := gdataManager.LoadItem("settings")
	if err != nil {
		logging.Named("settings").Warnw("could not load settings", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var settings SavedSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		logging.Named("settings").Warnw("could not parse saved settings", "error", err)
		return nil
	}
	return &settings
}

func SaveSettings(s SavedSettings) {
	if gdataManager == nil {
		return
	}

	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := gdataManager.SaveItem("settings", data); err != nil {
		logging.Named("settings").Warnw("could not save settings", "error", err)
	}
}
