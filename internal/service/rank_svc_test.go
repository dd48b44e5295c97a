package service

import (
	"math"
	"testing"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_Weights(t *testing.T) {
	svc := NewRankService()

	tests := []struct {
		name  string
		video model.Video
		want  float64
	}{
		{"zero engagement", model.Video{}, 0},
		{"likes only", model.Video{LikeCount: 10}, 30},
		{"comments only", model.Video{CommentCount: 5}, 10},
		{"shares only", model.Video{ShareCount: 4}, 8},
		{"favorites only", model.Video{FavoriteCount: 7}, 7},
		{"views only", model.Video{ViewCount: 500}, 50},
		{"mixed", model.Video{LikeCount: 2, CommentCount: 1, ShareCount: 1, FavoriteCount: 3, ViewCount: 10}, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Score(&tt.video)
			if !almostEqual(got, tt.want) {
				t.Errorf("Score() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestRankTop_ViewsCanOutrankLikes(t *testing.T) {
	svc := NewRankService()

	// 10 likes score 30; 500 views score 50. Raw view volume wins.
	a := model.Video{VideoID: "a", LikeCount: 10}
	b := model.Video{VideoID: "b", ViewCount: 500}

	ranked := svc.RankTop([]model.Video{a, b}, 0)
	if ranked[0].VideoID != "b" {
		t.Errorf("top video = %s, want b", ranked[0].VideoID)
	}
}

func TestRankTop_Truncates(t *testing.T) {
	svc := NewRankService()

	videos := make([]model.Video, 10)
	for i := range videos {
		videos[i].VideoID = string(rune('a' + i))
		videos[i].LikeCount = i
	}

	ranked := svc.RankTop(videos, 3)
	if len(ranked) != 3 {
		t.Fatalf("len = %d, want 3", len(ranked))
	}
	// Highest like counts first.
	if ranked[0].LikeCount != 9 || ranked[1].LikeCount != 8 || ranked[2].LikeCount != 7 {
		t.Errorf("unexpected order: %v %v %v", ranked[0].LikeCount, ranked[1].LikeCount, ranked[2].LikeCount)
	}
}

func TestRankTop_DoesNotMutateInput(t *testing.T) {
	svc := NewRankService()

	videos := []model.Video{
		{VideoID: "low", LikeCount: 1},
		{VideoID: "high", LikeCount: 100},
	}

	_ = svc.RankTop(videos, 0)
	if videos[0].VideoID != "low" {
		t.Error("input slice was reordered")
	}
}

func TestRankTop_Empty(t *testing.T) {
	svc := NewRankService()

	ranked := svc.RankTop(nil, 30)
	if len(ranked) != 0 {
		t.Errorf("len = %d, want 0", len(ranked))
	}
}
