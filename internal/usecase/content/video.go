package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"creatora-api/internal/domain"
)

const (
	hookDuration  = 3
	sceneDuration = 8
	ctaDuration   = 4
	maxBodyScenes = 3
)

var (
	bodyShots = []domain.ShotType{domain.ShotMedium, domain.ShotBRoll, domain.ShotWide}
	bodyNotes = []string{
		"Show product/subject with good lighting and composition",
		"B-roll footage of product in use or relevant visuals",
		"Wide shot showing context or environment",
		"Close-up details and texture shots",
	}
)

// VideoScript разбивает видеочасть сгенерированного поста на сцены.
func (s *Service) VideoScript(ctx context.Context, p domain.Principal, postID string) (domain.VideoScript, error) {
	post, err := s.ownedPost(ctx, p, postID)
	if err != nil {
		return domain.VideoScript{}, err
	}
	var assets domain.GenerationAssets
	if err := json.Unmarshal(post.Content, &assets); err != nil {
		return domain.VideoScript{}, fmt.Errorf("разбор контента поста %s: %w", postID, err)
	}
	video := assets.Video
	scenes := BuildScenes(video)
	return domain.VideoScript{
		PostID:               postID,
		Hook:                 video.Hook,
		Caption:              video.Caption,
		TotalDuration:        totalDuration(scenes),
		Scenes:               scenes,
		AudienceEngagement:   video.AudienceEngagement,
		Hashtags:             orEmpty(video.Hashtags),
		ShootingInstructions: video.ShootingInstructions,
	}, nil
}

// BuildScenes: вступление, до трёх сцен основного текста и призыв к действию.
func BuildScenes(video domain.VideoAssets) []domain.VideoScene {
	scenes := []domain.VideoScene{{
		SceneNumber:     1,
		Title:           "Opening Hook",
		Duration:        formatDuration(hookDuration),
		ShotType:        domain.ShotCloseup,
		VoiceoverScript: video.Hook,
		VisualNotes:     "Eye-catching opener with product/subject in focus",
		ShootingTips:    "Use good lighting, ensure audio is clear, start with energy",
	}}

	for i, chunk := range splitChunks(scriptLines(video.Script), maxBodyScenes) {
		n := i + 2
		scenes = append(scenes, domain.VideoScene{
			SceneNumber:     n,
			Title:           fmt.Sprintf("Scene %d - Main Content", n),
			Duration:        formatDuration(sceneDuration),
			ShotType:        bodyShots[i%len(bodyShots)],
			VoiceoverScript: strings.Join(chunk, " "),
			VisualNotes:     bodyNotes[i%len(bodyNotes)],
			ShootingTips:    "Maintain good pacing, use b-roll when appropriate",
		})
	}

	return append(scenes, domain.VideoScene{
		SceneNumber:     len(scenes) + 1,
		Title:           "Call to Action",
		Duration:        formatDuration(ctaDuration),
		ShotType:        domain.ShotTalkingHead,
		VoiceoverScript: video.AudienceEngagement,
		VisualNotes:     "Direct to camera, text overlay with contact info",
		ShootingTips:    "Be energetic, make eye contact with camera, smile",
	})
}

func scriptLines(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" || strings.Contains(line, "Host:") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func splitChunks(lines []string, maxChunks int) [][]string {
	if len(lines) == 0 {
		return nil
	}
	size := (len(lines) + maxChunks - 1) / maxChunks
	var chunks [][]string
	for i := 0; i < len(lines); i += size {
		end := i + size
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, lines[i:end])
	}
	return chunks
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func totalDuration(scenes []domain.VideoScene) string {
	total := 0
	for _, sc := range scenes {
		mm, ss, ok := strings.Cut(sc.Duration, ":")
		if !ok {
			continue
		}
		m, _ := strconv.Atoi(mm)
		s, _ := strconv.Atoi(ss)
		total += m*60 + s
	}
	return formatDuration(total)
}
