package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

var (
	dryRun      = flag.Bool("dry-run", true, "Dry run mode, don't actually update rows")
	resetFailed = flag.Bool("reset-failed", true, "Reset failed rows back to pending")
	sweepStale  = flag.Bool("sweep-stale", true, "Return stale processing rows to pending")
	staleMins   = flag.Int("stale-mins", 30, "Minutes before a processing row counts as stale")
)

func main() {
	flag.Parse()

	log.Println("🧹 Starting reset task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := connectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	reviewRepo := repository.NewReviewRepository(db)

	var resetCount, sweptCount int64

	// 1. 重置失败行
	if *resetFailed {
		count := countByStatus(db, model.StatusFailed)
		log.Printf("\n🔁 Failed rows eligible for reset: %d", count)
		if *dryRun {
			resetCount = count
		} else {
			resetCount, err = reviewRepo.ResetFailed()
			if err != nil {
				log.Fatalf("Failed to reset failed rows: %v", err)
			}
		}
	}

	// 2. 清理卡死的 processing 行
	if *sweepStale {
		olderThan := time.Duration(*staleMins) * time.Minute
		log.Printf("\n⏱️  Sweeping processing rows older than %s...", olderThan)
		if *dryRun {
			cutoff := time.Now().Add(-olderThan)
			db.Model(&model.Review{}).
				Where("processing_status = ? AND updated_at < ?", model.StatusProcessing, cutoff).
				Count(&sweptCount)
		} else {
			sweptCount, err = reviewRepo.SweepStaleProcessing(olderThan)
			if err != nil {
				log.Fatalf("Failed to sweep stale rows: %v", err)
			}
		}
	}

	// 3. 统计当前状态分布
	log.Println("\n📈 Current processing status distribution...")
	for _, status := range []string{model.StatusPending, model.StatusProcessing, model.StatusCompleted, model.StatusFailed} {
		log.Printf("  %-12s %d", status, countByStatus(db, status))
	}
	log.Printf("  %-12s %d", "unset", countByStatus(db, model.StatusUnset))

	// 输出统计
	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Reset Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Failed rows reset: %d", resetCount)
	log.Printf("Stale rows swept: %d", sweptCount)
	if *dryRun {
		log.Println("\n⚠️  DRY RUN MODE - No rows were actually updated")
		log.Println("   Run with -dry-run=false to apply changes")
	} else {
		log.Println("\n✅ Reset completed!")
	}
	log.Println(strings.Repeat("=", 60))
}

// countByStatus 统计某处理状态的行数
func countByStatus(db *gorm.DB, status string) int64 {
	var count int64
	db.Model(&model.Review{}).Where("processing_status = ?", status).Count(&count)
	return count
}

// connectDB 连接数据库
func connectDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
