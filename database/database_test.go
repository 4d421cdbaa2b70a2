package database

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Migration dosyaları Türkçe açıklama satırları içerir ve bu satırlarda
// apostrof geçer ("ID'ler", "id'leri"). Splitter yorum içeriğini parse
// etmemeli: apostrof string durumunu açmamalı, yorumdaki ';' statement
// sonu sayılmamalı.
func TestSplitStatements_LineCommentsWithApostrophes(t *testing.T) {
	sql := `-- ID'ler uygulama tarafinda uretilmez; DB uretir.
CREATE TABLE a (id TEXT);
-- kullanicilarin id'leri buraya yazilir
CREATE TABLE b (id TEXT);`

	stmts := splitStatements(sql)

	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE a")
	assert.Contains(t, stmts[1], "CREATE TABLE b")
}

func TestSplitStatements_BlockComments(t *testing.T) {
	sql := `/* blok yorum; icinde ';' ve 'apostrof' var */
CREATE TABLE a (id TEXT);
CREATE TABLE b (note TEXT DEFAULT 'it''s ok; really');`

	stmts := splitStatements(sql)

	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE a")
	// Literal içindeki ';' ve '' escape'i korunur.
	assert.Contains(t, stmts[1], "it''s ok; really")
}

func TestSplitStatements_StringLiteralWithSemicolon(t *testing.T) {
	sql := `INSERT INTO t (v) VALUES ('a;b');INSERT INTO t (v) VALUES ('c')`

	stmts := splitStatements(sql)

	require.Len(t, stmts, 2)
	assert.Equal(t, `INSERT INTO t (v) VALUES ('a;b')`, stmts[0])
}

// Gömülü migration'lar sıfırdan bir veritabanına uygulanabilmeli —
// yorumlardaki apostroflar dahil dosyanın tamamı sorunsuz çalışmalı.
func TestNew_AppliesEmbeddedMigrations(t *testing.T) {
	migrationsFS, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Şemanın çekirdek tabloları gerçekten oluşmuş olmalı.
	for _, table := range []string{"users", "posts", "comments", "reactions", "conversations"} {
		var count int
		err := db.Conn.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}

	// İkinci açılış idempotent: migration'lar kayıtlı, tekrar koşmaz.
	db2, err := New(filepath.Join(t.TempDir(), "test2.db"), migrationsFS)
	require.NoError(t, err)
	db2.Close()
}
