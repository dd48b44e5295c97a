package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/ViahIsGit/dksocial-sub000/internal/config"
	"github.com/ViahIsGit/dksocial-sub000/internal/db"
	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/repository"
)

// seed fills a development database with fake users, videos, and engagement
// so the feed has something to rank.
func main() {
	users := flag.Int("users", 25, "number of fake users")
	videos := flag.Int("videos", 120, "number of fake videos")
	flag.Parse()

	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	userRepo := repository.NewUserRepo(pool)
	videoRepo := repository.NewVideoRepo(pool)
	engagementRepo := repository.NewEngagementRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)

	userIDs := make([]string, 0, *users)
	for i := 0; i < *users; i++ {
		id := uuid.NewString()
		username := gofakeit.Username()
		if err := userRepo.EnsureUser(ctx, id, username); err != nil {
			log.Fatalf("seed user %s: %v", username, err)
		}
		userIDs = append(userIDs, id)
	}
	log.Printf("seeded %d users", len(userIDs))

	videoIDs := make([]string, 0, *videos)
	for i := 0; i < *videos; i++ {
		caption := gofakeit.Sentence(6)
		duration := 5 + rand.Float64()*55
		v := &model.Video{
			VideoID:  uuid.NewString(),
			AuthorID: userIDs[rand.Intn(len(userIDs))],
			Caption:  &caption,
			MediaKey: fmt.Sprintf("videos/%s.mp4", uuid.NewString()),
			Duration: &duration,
		}
		// Roughly one post in eight is a slideshow.
		if rand.Intn(8) == 0 {
			v.MediaKey = ""
			for n := 0; n < 2+rand.Intn(5); n++ {
				v.SlideKeys = append(v.SlideKeys, fmt.Sprintf("images/%s.jpg", uuid.NewString()))
			}
		}
		if err := videoRepo.Insert(ctx, v); err != nil {
			log.Fatalf("seed video: %v", err)
		}
		videoIDs = append(videoIDs, v.VideoID)
	}
	log.Printf("seeded %d videos", len(videoIDs))

	likes, favorites, comments := 0, 0, 0
	for _, videoID := range videoIDs {
		for _, userID := range userIDs {
			switch rand.Intn(10) {
			case 0, 1, 2:
				if _, err := engagementRepo.AddLike(ctx, videoID, userID); err == nil {
					likes++
				}
			case 3:
				if _, err := engagementRepo.AddFavorite(ctx, videoID, userID); err == nil {
					favorites++
				}
			case 4:
				c := &model.Comment{
					CommentID: uuid.NewString(),
					VideoID:   videoID,
					UserID:    userID,
					Text:      gofakeit.Sentence(10),
				}
				if err := commentRepo.Insert(ctx, c); err == nil {
					comments++
				}
			}
		}
		// View counts skew heavily; some videos go viral.
		views := rand.Intn(200)
		if rand.Intn(12) == 0 {
			views += 2000 + rand.Intn(8000)
		}
		if views > 0 {
			if err := videoRepo.IncrementCounter(ctx, videoID, "view_count", views); err != nil {
				log.Fatalf("seed views: %v", err)
			}
		}
	}
	log.Printf("seeded %d likes, %d favorites, %d comments", likes, favorites, comments)

	for _, userID := range userIDs {
		for n := 0; n < rand.Intn(6); n++ {
			other := userIDs[rand.Intn(len(userIDs))]
			if other == userID {
				continue
			}
			_, _ = userRepo.Follow(ctx, userID, other)
		}
	}
	log.Println("seed complete")
}
