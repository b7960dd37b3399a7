package threads

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
)

// notDeleted is the single "live thread" predicate shared by every thread
// listing.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("thread.is_deleted = ?", false)
}

func ownedBy(email string, product types.Product) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("thread.user_email = ? AND thread.product = ?", email, product)
	}
}

// inOrg partitions threads by organization. A nil or empty orgID selects
// threads without one; the two partitions never mix.
func inOrg(orgID *string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if orgID != nil && strings.TrimSpace(*orgID) != "" {
			return db.Where("thread.org_id = ?", strings.TrimSpace(*orgID))
		}
		return db.Where("thread.org_id IS NULL")
	}
}

// hasMessageContaining keeps threads with at least one message whose content
// contains text, case-insensitively. fold is the SQL case-folding function and
// is applied to both sides. The IN subquery yields each thread once.
func hasMessageContaining(fold, text string) func(*gorm.DB) *gorm.DB {
	cond := fmt.Sprintf(`%s(thread_message.content) LIKE %s(?) ESCAPE '\'`, fold, fold)
	return func(q *gorm.DB) *gorm.DB {
		sub := q.Session(&gorm.Session{NewDB: true}).
			Model(&types.ThreadMessage{}).
			Select("thread_message.thread_uuid").
			Where(cond, likePattern(text))
		return q.Where("thread.uuid IN (?)", sub)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("thread.created_at DESC").Order("thread.id DESC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// patch validates fields against the entity's allow-list and stamps
// updated_at.
func patch(op string, fields map[string]interface{}, allowed map[string]bool) (map[string]interface{}, error) {
	if len(fields) == 0 {
		return nil, apierr.Validation(op+": no fields to update", nil)
	}
	var rejected []string
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		if !allowed[k] {
			rejected = append(rejected, k)
			continue
		}
		out[k] = v
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return nil, apierr.Validation(fmt.Sprintf("%s: fields not updatable: %s", op, strings.Join(rejected, ", ")), nil)
	}
	out["updated_at"] = nowUTC()
	return out, nil
}

func nowUTC() time.Time { return time.Now().UTC() }
