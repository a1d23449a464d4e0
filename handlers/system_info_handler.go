package handlers

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"discord-modbot/bot"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cpuCount, _ := cpu.CountsWithContext(ctx, true)
	cpuPercent, _ := cpu.PercentWithContext(ctx, 0, false)
	cpuUsage := 0.0
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}

	memValue := "unknown"
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		memValue = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}
	osValue, kernel := "unknown", "unknown"
	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		osValue = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		kernel = hostInfo.KernelVersion
	}

	caseCount, err := b.Store.Cases().CountByGuild(ctx, i.GuildID)
	if err != nil {
		log.Warn().Err(err).Str("guild_id", i.GuildID).Msg("failed to count cases")
	}
	dbStats := b.DB.Stats()

	embed := &discordgo.MessageEmbed{
		Title: "System info",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: osValue, Inline: true},
			{Name: "🔧 Kernel", Value: kernel, Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", cpuUsage), Inline: true},
			{Name: "🧠 Memory", Value: memValue, Inline: true},
			{Name: "⏱️ Gateway latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🌍 Guilds", Value: fmt.Sprintf("%d", len(s.State.Guilds)), Inline: true},
			{Name: "📁 Cases in this server", Value: fmt.Sprintf("%d", caseCount), Inline: true},
			{Name: "🗃️ DB connections", Value: fmt.Sprintf("%d open, %d in use", dbStats.OpenConnections, dbStats.InUse), Inline: true},
			{Name: "⌛ Uptime", Value: time.Since(b.StartedAt).Truncate(time.Second).String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System monitor • %s", time.Now().Format("15:04")),
		},
	}

	utils.SendEmbedResponse(s, i, true, embed)
}
