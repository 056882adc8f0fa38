package mysql

import (
	"context"
	"fmt"
)

// Schema gift_cardsテーブルの定義
// brandとnotesはサニタイズ後の文字列を保存するため入力の上限より長く取る
const Schema = `
CREATE TABLE IF NOT EXISTS gift_cards (
	id              CHAR(36)      NOT NULL,
	owner_id        VARCHAR(255)  NOT NULL,
	brand           VARCHAR(400)  NOT NULL,
	balance         DECIMAL(7, 2) NOT NULL,
	expiration_date DATE          NOT NULL,
	notes           TEXT          NULL,
	created_at      DATETIME(6)   NOT NULL,
	updated_at      DATETIME(6)   NOT NULL,
	PRIMARY KEY (id),
	KEY idx_gift_cards_owner_created (owner_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Migrate テーブルが存在しなければ作成する
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate gift_cards: %w", err)
	}
	return nil
}
