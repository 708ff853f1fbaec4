package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"virs-challenge/backend/internal/model"
	"virs-challenge/backend/internal/repository"
	pkgerrors "virs-challenge/backend/pkg/errors"
)

// 各 mock 以 map 模拟表，返回副本，避免调用方修改影响“存储”
// 约束（唯一访问码、单一活动学期、CAS）按数据库行为模拟

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	mu        sync.Mutex
	semesters map[uint64]*model.Semester
	nextID    uint64

	// 测试钩子：在 Create 真正写入前触发，用于模拟并发插入
	beforeCreate func(s *model.Semester)
	failWith     error
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[uint64]*model.Semester)}
}

// seed 直接写入一行，不经过约束检查
func (m *mockSemesterRepo) seed(s *model.Semester) *model.Semester {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.semesters[s.ID] = &cp
	return s
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	if m.beforeCreate != nil {
		m.beforeCreate(semester)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, s := range m.semesters {
		if s.AccessCode == semester.AccessCode {
			return pkgerrors.ErrDuplicateAccessCode
		}
		if semester.IsActive && s.IsActive {
			return pkgerrors.ErrActiveSemesterExists
		}
	}
	m.nextID++
	semester.ID = m.nextID
	cp := *semester
	m.semesters[semester.ID] = &cp
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id uint64) (*model.Semester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.semesters[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetActive(_ context.Context) (*model.Semester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.semesters {
		if s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) ExistsByAccessCode(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.semesters {
		if s.AccessCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSemesterRepo) sorted() []model.Semester {
	result := make([]model.Semester, 0, len(m.semesters))
	for _, s := range m.semesters {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockSemesterRepo) List(_ context.Context, offset, limit int) ([]model.Semester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	if offset >= len(all) {
		return []model.Semester{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockSemesterRepo) ListAll(_ context.Context) ([]model.Semester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func (m *mockSemesterRepo) Update(_ context.Context, id uint64, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.semesters[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			s.Name = v.(string)
		case "start_date":
			s.StartDate = v.(time.Time)
		case "end_date":
			s.EndDate = v.(time.Time)
		case "auto_clear":
			s.AutoClear = v.(bool)
		case "updated_at":
			t := v.(time.Time)
			s.UpdatedAt = &t
		}
	}
	return nil
}

func (m *mockSemesterRepo) MarkEnded(_ context.Context, id uint64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.semesters[id]
	if !ok || !s.IsActive {
		return pkgerrors.ErrOptimisticLock
	}
	s.IsActive = false
	s.EndedAt = &now
	s.UpdatedAt = &now
	return nil
}

func (m *mockSemesterRepo) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.semesters[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.semesters, id)
	return nil
}

// ── Mock StreakRepository ──

type mockStreakRepo struct {
	mu      sync.Mutex
	streaks map[string]*model.Streak
	nextID  uint64

	// 测试钩子：在 CAS 比较前触发，用于模拟并发请求抢先完成
	beforeCAS    func()
	beforeCreate func()
	casCalls     int
}

func newMockStreakRepo() *mockStreakRepo {
	return &mockStreakRepo{streaks: make(map[string]*model.Streak)}
}

func (m *mockStreakRepo) GetByUserID(_ context.Context, userID string) (*model.Streak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.streaks[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStreakRepo) Create(_ context.Context, streak *model.Streak) error {
	if m.beforeCreate != nil {
		hook := m.beforeCreate
		m.beforeCreate = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.streaks[streak.UserID]; ok {
		return pkgerrors.ErrDuplicateStreak
	}
	m.nextID++
	streak.ID = m.nextID
	cp := *streak
	m.streaks[streak.UserID] = &cp
	return nil
}

func (m *mockStreakRepo) CompareAndIncrement(_ context.Context, id uint64, observed *time.Time, now time.Time) error {
	if m.beforeCAS != nil {
		hook := m.beforeCAS
		m.beforeCAS = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.casCalls++
	for _, s := range m.streaks {
		if s.ID != id {
			continue
		}
		switch {
		case observed == nil && s.LastUpdated != nil:
			return pkgerrors.ErrOptimisticLock
		case observed != nil && (s.LastUpdated == nil || !s.LastUpdated.Equal(*observed)):
			return pkgerrors.ErrOptimisticLock
		}
		s.Count++
		s.LastUpdated = &now
		return nil
	}
	return pkgerrors.ErrOptimisticLock
}

// set 直接写入打卡状态（模拟历史数据）
func (m *mockStreakRepo) set(userID string, count int, lastUpdated *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.streaks[userID]
	if !ok {
		m.nextID++
		s = &model.Streak{ID: m.nextID, UserID: userID}
		m.streaks[userID] = s
	}
	s.Count = count
	s.LastUpdated = lastUpdated
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	mu       sync.Mutex
	messages map[uint64]*model.Message
	nextID   uint64
	failWith error
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: make(map[uint64]*model.Message)}
}

func copyMessage(m *model.Message) model.Message {
	cp := *m
	cp.Replies = append([]model.Reply(nil), m.Replies...)
	cp.Likes = append([]model.Like(nil), m.Likes...)
	return cp
}

func (m *mockMessageRepo) List(_ context.Context, offset, limit int) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]model.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		all = append(all, copyMessage(msg))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].Timestamp.After(all[j].Timestamp)
		}
		return all[i].ID > all[j].ID
	})
	if offset >= len(all) {
		return []model.Message{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id uint64) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		cp := copyMessage(msg)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) Create(_ context.Context, message *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	message.ID = m.nextID
	cp := copyMessage(message)
	m.messages[message.ID] = &cp
	return nil
}

func (m *mockMessageRepo) UpdateContent(_ context.Context, id uint64, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	msg.Content = content
	return nil
}

func (m *mockMessageRepo) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.messages, id)
	return nil
}

func (m *mockMessageRepo) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	n := int64(len(m.messages))
	m.messages = make(map[uint64]*model.Message)
	return n, nil
}

func (m *mockMessageRepo) CreateReply(_ context.Context, reply *model.Reply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[reply.MessageID]
	if !ok {
		return errors.New("外键约束冲突")
	}
	m.nextID++
	reply.ID = m.nextID
	msg.Replies = append(msg.Replies, *reply)
	return nil
}

func (m *mockMessageRepo) DeleteReply(_ context.Context, messageID, replyID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range msg.Replies {
		if msg.Replies[i].ID == replyID {
			msg.Replies = append(msg.Replies[:i], msg.Replies[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) AddLike(_ context.Context, like *model.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[like.MessageID]
	if !ok {
		return errors.New("外键约束冲突")
	}
	for _, l := range msg.Likes {
		if l.UserID == like.UserID {
			return pkgerrors.ErrDuplicateLike
		}
	}
	m.nextID++
	like.ID = m.nextID
	msg.Likes = append(msg.Likes, *like)
	return nil
}

func (m *mockMessageRepo) RemoveLike(_ context.Context, messageID uint64, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return nil
	}
	kept := msg.Likes[:0]
	for _, l := range msg.Likes {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	msg.Likes = kept
	return nil
}

func (m *mockMessageRepo) CountLikes(_ context.Context, messageID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return 0, nil
	}
	return int64(len(msg.Likes)), nil
}

// ── 聚合 ──

type mockRepos struct {
	semester *mockSemesterRepo
	streak   *mockStreakRepo
	message  *mockMessageRepo
}

// newMockRepository 组装未绑定数据库的 Repository（BeginTx 返回 nil 事务）
func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		semester: newMockSemesterRepo(),
		streak:   newMockStreakRepo(),
		message:  newMockMessageRepo(),
	}
	repo := &repository.Repository{
		Semester: m.semester,
		Streak:   m.streak,
		Message:  m.message,
	}
	return repo, m
}
