package persistence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// nextDocumentNumber generates the next document number for the given prefix:
// {prefix}{yyyymmdd}{seq} with a zero-padded 3-digit sequence that restarts
// daily. The caller passes the model so the query hits the right table.
func nextDocumentNumber(db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	datePrefix := prefix + time.Now().Format("20060102")

	var maxNumber string
	if err := db.
		Model(model).
		Where(column+" LIKE ?", datePrefix+"%").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &maxNumber).Error; err != nil {
		return "", err
	}

	nextSeq := 1
	if maxNumber != "" {
		if seq, err := strconv.Atoi(strings.TrimPrefix(maxNumber, datePrefix)); err == nil {
			nextSeq = seq + 1
		}
	}

	return fmt.Sprintf("%s%03d", datePrefix, nextSeq), nil
}
