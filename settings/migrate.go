package settings

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/buger/jsonparser"
	"github.com/sirupsen/logrus"

	"ttsoverlay/storage"
)

// migrateLegacy imports a settings.json written by earlier releases
// into the YAML document, once. The JSON file is renamed afterwards so
// the migration never runs twice.
func migrateLegacy(disk *storage.Disk, yamlPath string) error {
	if _, ok := disk.Get("tts_engine"); ok {
		return nil // document already populated
	}

	legacy := filepath.Join(filepath.Dir(yamlPath), "settings.json")
	data, err := os.ReadFile(legacy)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	values := map[string]interface{}{}

	for _, key := range []string{
		"tts_engine", "voice_id",
		"voicerss_language", "voicerss_voice", "voicerss_api_key",
		"voice_chat_key", "history_hotkey_modifier",
		"toggle_visibility_key", "focus_window_key",
	} {
		if v, err := jsonparser.GetString(data, key); err == nil {
			values[key] = v
		}
	}
	if v, err := jsonparser.GetInt(data, "output_device_index"); err == nil {
		values["output_device_index"] = int(v)
	}
	if v, err := jsonparser.GetInt(data, "mic_device_index"); err == nil {
		values["mic_device_index"] = int(v)
	}
	// the old format calls these volumes; they are gain factors
	if v, err := jsonparser.GetFloat(data, "output_volume"); err == nil {
		values["output_gain"] = clampGain(v)
	}
	if v, err := jsonparser.GetFloat(data, "mic_volume"); err == nil {
		values["mic_gain"] = clampGain(v)
	}
	if v, err := jsonparser.GetBoolean(data, "remove_queue"); err == nil {
		values["remove_queue"] = v
	}

	if len(values) == 0 {
		return nil
	}

	if err := disk.Update(values); err != nil {
		return err
	}
	if err := os.Rename(legacy, legacy+".migrated"); err != nil {
		logrus.WithError(err).Warnln("failed to rename migrated settings.json")
	}

	logrus.WithField("keys", len(values)).Infoln("migrated legacy settings.json")
	return nil
}
