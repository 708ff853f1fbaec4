//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"virs-challenge/backend/internal/model"
	"virs-challenge/backend/internal/repository"
	"virs-challenge/backend/pkg/database"
	pkgerrors "virs-challenge/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=virs_challenge_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取底层连接失败: %v\n", err)
		os.Exit(1)
	}
	// 使用与生产一致的嵌入式迁移，确保约束与部分唯一索引存在
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "执行迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// resetTables 清空所有业务表
func resetTables(t *testing.T) {
	t.Helper()
	if err := testDB.Exec("TRUNCATE semesters, streaks, messages, replies, likes RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("清空测试表失败: %v", err)
	}
}

func newSemester(code string, active bool) *model.Semester {
	return &model.Semester{
		Name:       "测试学期-" + code,
		AccessCode: code,
		StartDate:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		IsActive:   active,
		CreatedAt:  model.StoreNow(time.Now()),
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Semester Constraints
// ═══════════════════════════════════════════════════════════

func TestSemester_SingleActiveIndex(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Semester.Create(ctx, newSemester("AAAA0001", true)); err != nil {
		t.Fatalf("创建第一个活动学期失败: %v", err)
	}

	err := repo.Semester.Create(ctx, newSemester("AAAA0002", true))
	if !errors.Is(err, pkgerrors.ErrActiveSemesterExists) {
		t.Fatalf("期望 ErrActiveSemesterExists，实际: %v", err)
	}

	// 非活动学期不受部分唯一索引限制
	if err := repo.Semester.Create(ctx, newSemester("AAAA0003", false)); err != nil {
		t.Fatalf("创建非活动学期应成功: %v", err)
	}
}

func TestSemester_DuplicateAccessCode(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Semester.Create(ctx, newSemester("DUPCODE1", false)); err != nil {
		t.Fatalf("创建学期失败: %v", err)
	}
	exists, err := repo.Semester.ExistsByAccessCode(ctx, "DUPCODE1")
	if err != nil || !exists {
		t.Fatalf("期望访问码已存在，实际 exists=%v err=%v", exists, err)
	}

	err = repo.Semester.Create(ctx, newSemester("DUPCODE1", false))
	if !errors.Is(err, pkgerrors.ErrDuplicateAccessCode) {
		t.Fatalf("期望 ErrDuplicateAccessCode，实际: %v", err)
	}
}

func TestSemester_MarkEnded_OnlyOnce(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := newSemester("ENDONCE1", true)
	if err := repo.Semester.Create(ctx, s); err != nil {
		t.Fatalf("创建学期失败: %v", err)
	}

	now := model.StoreNow(time.Now())
	if err := repo.Semester.MarkEnded(ctx, s.ID, now); err != nil {
		t.Fatalf("第一次结束应成功: %v", err)
	}
	if err := repo.Semester.MarkEnded(ctx, s.ID, now); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("第二次结束期望 ErrOptimisticLock，实际: %v", err)
	}

	got, err := repo.Semester.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("查询学期失败: %v", err)
	}
	if got.IsActive || got.EndedAt == nil || !got.EndedAt.Equal(now) {
		t.Errorf("期望已结束且 ended_at=%v，实际 is_active=%v ended_at=%v", now, got.IsActive, got.EndedAt)
	}
}

func TestSemester_ListOrderAndDelete(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Semester.Create(ctx, newSemester(fmt.Sprintf("LIST000%d", i), false)); err != nil {
			t.Fatalf("创建学期失败: %v", err)
		}
	}

	page, err := repo.Semester.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("分页查询失败: %v", err)
	}
	if len(page) != 2 || page[0].ID >= page[1].ID {
		t.Fatalf("期望按 id 升序返回 2 条，实际: %+v", page)
	}

	if err := repo.Semester.Delete(ctx, page[0].ID); err != nil {
		t.Fatalf("删除学期失败: %v", err)
	}
	if err := repo.Semester.Delete(ctx, page[0].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("重复删除期望 ErrRecordNotFound，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Streak Compare-And-Swap
// ═══════════════════════════════════════════════════════════

func TestStreak_CompareAndIncrement(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	streak := &model.Streak{UserID: "user-cas", CreatedAt: model.StoreNow(time.Now())}
	if err := repo.Streak.Create(ctx, streak); err != nil {
		t.Fatalf("创建打卡记录失败: %v", err)
	}
	if err := repo.Streak.Create(ctx, &model.Streak{UserID: "user-cas"}); !errors.Is(err, pkgerrors.ErrDuplicateStreak) {
		t.Fatalf("重复创建期望 ErrDuplicateStreak，实际: %v", err)
	}

	now := model.StoreNow(time.Now())
	if err := repo.Streak.CompareAndIncrement(ctx, streak.ID, nil, now); err != nil {
		t.Fatalf("首次 CAS 应成功: %v", err)
	}
	// 基于过期快照的第二次 CAS 必须失败
	if err := repo.Streak.CompareAndIncrement(ctx, streak.ID, nil, now); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("过期快照期望 ErrOptimisticLock，实际: %v", err)
	}

	got, err := repo.Streak.GetByUserID(ctx, "user-cas")
	if err != nil {
		t.Fatalf("查询打卡记录失败: %v", err)
	}
	if got.Count != 1 {
		t.Errorf("期望 count=1，实际: %d", got.Count)
	}
	if got.LastUpdated == nil || !got.LastUpdated.Equal(now) {
		t.Fatalf("期望 last_updated=%v，实际: %v", now, got.LastUpdated)
	}

	// 回读的时间值可直接作为下一次 CAS 的比较基准
	later := now.Add(25 * time.Hour)
	if err := repo.Streak.CompareAndIncrement(ctx, streak.ID, got.LastUpdated, later); err != nil {
		t.Fatalf("基于回读值的 CAS 应成功: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Message Board
// ═══════════════════════════════════════════════════════════

func TestMessage_CascadeAndLikes(t *testing.T) {
	resetTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	now := model.StoreNow(time.Now())

	msg := &model.Message{Author: "alice", Content: "你好", Timestamp: now}
	if err := repo.Message.Create(ctx, msg); err != nil {
		t.Fatalf("创建留言失败: %v", err)
	}
	if err := repo.Message.CreateReply(ctx, &model.Reply{MessageID: msg.ID, Author: "bob", Content: "回复", Timestamp: now}); err != nil {
		t.Fatalf("创建回复失败: %v", err)
	}
	if err := repo.Message.AddLike(ctx, &model.Like{MessageID: msg.ID, UserID: "u1", Timestamp: now}); err != nil {
		t.Fatalf("点赞失败: %v", err)
	}
	if err := repo.Message.AddLike(ctx, &model.Like{MessageID: msg.ID, UserID: "u1", Timestamp: now}); !errors.Is(err, pkgerrors.ErrDuplicateLike) {
		t.Fatalf("重复点赞期望 ErrDuplicateLike，实际: %v", err)
	}

	got, err := repo.Message.GetByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("查询留言失败: %v", err)
	}
	if len(got.Replies) != 1 || len(got.Likes) != 1 || !got.LikedBy("u1") {
		t.Errorf("期望 1 条回复 1 个点赞，实际 replies=%d likes=%d", len(got.Replies), len(got.Likes))
	}

	// 事务内清空留言板后回滚，数据应保留
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	if n, err := repo.WithTx(tx).Message.DeleteAll(ctx); err != nil || n != 1 {
		tx.Rollback()
		t.Fatalf("事务内清空期望删除 1 条，实际 n=%d err=%v", n, err)
	}
	tx.Rollback()
	if _, err := repo.Message.GetByID(ctx, msg.ID); err != nil {
		t.Fatalf("回滚后留言应仍存在: %v", err)
	}

	if err := repo.Message.Delete(ctx, msg.ID); err != nil {
		t.Fatalf("删除留言失败: %v", err)
	}
	count, err := repo.Message.CountLikes(ctx, msg.ID)
	if err != nil || count != 0 {
		t.Errorf("级联删除后点赞应为 0，实际 count=%d err=%v", count, err)
	}
}
