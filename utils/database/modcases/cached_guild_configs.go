package modcases

import (
	"context"
	"time"

	"discord-modbot/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedGuildConfigs fronts GuildConfigRepository with an expiring LRU so the
// DM policy does not hit the database on every action.
type CachedGuildConfigs struct {
	repo  *GuildConfigRepository
	cache *expirable.LRU[string, model.GuildModerationConfig]
}

func NewCachedGuildConfigs(repo *GuildConfigRepository, size int, ttl time.Duration) *CachedGuildConfigs {
	if size <= 0 {
		size = 1024
	}
	return &CachedGuildConfigs{
		repo:  repo,
		cache: expirable.NewLRU[string, model.GuildModerationConfig](size, nil, ttl),
	}
}

func (c *CachedGuildConfigs) FindByGuildID(ctx context.Context, guildID string) (model.GuildModerationConfig, error) {
	if cfg, ok := c.cache.Get(guildID); ok {
		return cfg, nil
	}
	cfg, err := c.repo.FindByGuildID(ctx, guildID)
	if err != nil {
		return model.GuildModerationConfig{}, err
	}
	c.cache.Add(guildID, cfg)
	return cfg, nil
}

// Save writes through to the repository and refreshes the cached entry.
func (c *CachedGuildConfigs) Save(ctx context.Context, cfg model.GuildModerationConfig) (model.GuildModerationConfig, error) {
	saved, err := c.repo.Save(ctx, cfg)
	if err != nil {
		c.cache.Remove(cfg.GuildID)
		return model.GuildModerationConfig{}, err
	}
	c.cache.Add(saved.GuildID, saved)
	return saved, nil
}
