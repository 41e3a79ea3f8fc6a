package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Player session
		"Loaded %s: %.2fs %dx%d":           "%s を読み込みました: %.2f秒 %dx%d",
		"Media error: %v":                  "メディアエラー: %v",
		"Playback refused: %v":             "再生が拒否されました: %v",
		"Could not resume playback: %v":    "再生を再開できませんでした: %v",
		"Frame decoder unavailable: %v":    "フレームデコーダーを利用できません: %v",
		"Frame decode failed at %.2fs: %v": "%.2f秒のフレームのデコードに失敗しました: %v",
		"Frame decoder close: %v":          "フレームデコーダーの終了: %v",

		// Geometry
		"Overlay resolution set to %dx%d": "オーバーレイ解像度を %dx%d に設定しました",
		"Overlay resized after metadata":  "メタデータ読み込み後にオーバーレイをリサイズしました",

		// Overlay
		"Drew %d detections from %s at %.3fs": "%d 件の検出を %s から %.3f秒 時点で描画しました",

		// Clip extractor
		"Clipping %.2fs-%.2fs around %.2fs":                      "%.2f秒-%.2f秒 (%.2f秒 付近) を切り出し中",
		"Clip request at %.2fs ignored: job %s active":           "%.2f秒 のクリップ要求を無視しました: ジョブ %s が実行中です",
		"Clip request for %q ignored: loaded source is %q":       "%q のクリップ要求を無視しました: 読み込み中のソースは %q です",
		"Clip request rejected: %v":                              "クリップ要求を拒否しました: %v",
		"No seek confirmation after %v, recording anyway":        "%v 経過してもシーク完了が通知されないため、録画を開始します",
		"No preferred clip format supported, falling back to %s": "優先形式に対応していないため %s にフォールバックします",
		"Recording %s as %s":                                     "%s を %s として録画中",
		"Recorder stopped early at %.2fs":                        "レコーダーが %.2f秒 で早期に停止しました",
		"Clip saved to %s (%d bytes)":                            "クリップを %s に保存しました (%d バイト)",
		"Clip %s failed: %v":                                     "クリップ %s が失敗しました: %v",
		"Job %s: %s -> %s":                                       "ジョブ %s: %s -> %s",

		// Status messages shown to the user
		"Clipping video...":                      "動画を切り出しています...",
		"Clip download started!":                 "クリップのダウンロードを開始しました!",
		"Error creating clip. Please try again.": "クリップの作成中にエラーが発生しました。もう一度お試しください。",

		// Recorders
		"Recording %dx%d at %.2f fps":      "%dx%d を %.2f fps で録画中",
		"Recording %s with %s":             "%s を %s で録画中",
		"Dropped %d frames while encoding": "エンコード中に %d フレームを破棄しました",
		"ffmpeg recording unavailable: %v": "ffmpeg による録画は利用できません: %v",
		"Wrote %s (%s, %d bytes)":          "%s を書き込みました (%s, %d バイト)",
	})
}
