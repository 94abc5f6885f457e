// Package config provides configuration management for PlayDeck.
//
// Settings are read from a JSON file and then overridden by PLAYDECK_*
// environment variables, optionally loaded from a .env file:
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	if err := settings.ApplyEnv(".env"); err != nil {
//	    return err
//	}
//	pl, err := settings.BuildPlaylist(ctx, client)
//
// # Default Settings
//
// DefaultSettings plays two tracks from /audio at volume 0.3:
//
//	1. christmas-nice.mp3       "Christmas Nice"
//	2. christmas-is-coming.mp3  "Christmas Is Coming"
//
// # Saving Settings
//
//	settings.Volume = 0.5
//	err := settings.Save(config.DefaultPath())
package config
