package library

import (
	"sort"
	"strings"

	"github.com/casesurf/casesurf/pkg/models"
)

// Sort modes for the library view
const (
	SortDefault   = "default"
	SortClickDesc = "click_desc"
	SortTymDesc   = "tym_desc"
)

// DefaultPageSize matches the infinite-scroll batch the frontend loads
const DefaultPageSize = 12

// Query describes one page of the library view
type Query struct {
	Filter string
	Sort   string
	Limit  int
	Offset int
}

// filterVideos narrows the list. A filter containing a tiktok.com URL
// selects that exact video; anything else matches keywords, tags and
// description case-insensitively.
func filterVideos(videos []*models.Video, filter string) []*models.Video {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return videos
	}

	if strings.Contains(filter, "tiktok.com") {
		for _, video := range videos {
			if video.URL == filter {
				return []*models.Video{video}
			}
		}
		return nil
	}

	needle := strings.ToLower(filter)
	var matched []*models.Video
	for _, video := range videos {
		if videoMatches(video, needle) {
			matched = append(matched, video)
		}
	}
	return matched
}

func videoMatches(video *models.Video, needle string) bool {
	for _, keyword := range video.Keywords {
		if strings.Contains(strings.ToLower(keyword), needle) {
			return true
		}
	}

	for _, tag := range []string{
		video.Tags.Niche, video.Tags.ContentAngle, video.Tags.HookType,
		video.Tags.CTAType, video.Tags.TrustTactic, video.Tags.ProductType,
		video.Tags.Title, video.Tags.TargetPersona, video.Tags.ScriptFramework,
		video.Tags.CoreEmotion,
	} {
		if tag != "" && strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}

	return strings.Contains(strings.ToLower(video.Description), needle)
}

// sortVideos orders the list. Sorting is stable so equal counters keep
// their feed order; absent counters sort as zero.
func sortVideos(videos []*models.Video, mode string) []*models.Video {
	sorted := make([]*models.Video, len(videos))
	copy(sorted, videos)

	switch mode {
	case SortClickDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Clicks() > sorted[j].Clicks()
		})
	case SortTymDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Likes() > sorted[j].Likes()
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ID < sorted[j].ID
		})
	}

	return sorted
}

// paginate slices one page out of the filtered, sorted list
func paginate(videos []*models.Video, limit, offset int) *models.VideoPage {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	total := len(videos)
	if offset >= total {
		return &models.VideoPage{
			Videos: []*models.Video{},
			Total:  total,
			Limit:  limit,
			Offset: offset,
		}
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return &models.VideoPage{
		Videos:  videos[offset:end],
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
	}
}
