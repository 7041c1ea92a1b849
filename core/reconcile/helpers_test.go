package reconcile

import (
	"encoding/json"

	"shared-save/core/savefile"
)

func craft(id, name, author, payload string) savefile.Craft {
	return savefile.Craft{
		ID:      id,
		Name:    name,
		Author:  author,
		Status:  savefile.StatusActive,
		Payload: json.RawMessage(payload),
	}
}

func world(playTime int64, crafts ...savefile.Craft) *savefile.SaveWorld {
	w := savefile.NewWorld()
	w.Settings.TotalPlayTimeSeconds = playTime
	w.Settings.Extra["difficulty"] = json.RawMessage(`"normal"`)
	w.Persistent["Flags.bin"] = []byte{0x01, 0x02}
	for _, c := range crafts {
		w.Crafts[c.ID] = c
	}
	return w
}

func destroyed(c savefile.Craft) savefile.Craft {
	c.Status = savefile.StatusDestroyed
	return c
}

func renamed(c savefile.Craft, name string) savefile.Craft {
	c.Name = name
	return c
}

func authored(c savefile.Craft, author string) savefile.Craft {
	c.Author = author
	return c
}

func withPayload(c savefile.Craft, payload string) savefile.Craft {
	c.Payload = json.RawMessage(payload)
	return c
}

func without(w *savefile.SaveWorld, ids ...string) *savefile.SaveWorld {
	out := w.Clone()
	for _, id := range ids {
		delete(out.Crafts, id)
	}
	return out
}

func with(w *savefile.SaveWorld, crafts ...savefile.Craft) *savefile.SaveWorld {
	out := w.Clone()
	for _, c := range crafts {
		out.Crafts[c.ID] = c
	}
	return out
}
