// Package main provides localization for the vidreview CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Review tracked sports video: overlays, clips and exports": "トラッキング付きスポーツ動画のレビュー: オーバーレイ、クリップ、エクスポート",
		"YAML configuration file":                                  "YAML設定ファイル",
		"Log level (debug, info, warn, error)":                     "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                  "全てのログ出力を抑制",
		"Path to the ffmpeg executable":                            "ffmpeg実行ファイルのパス",

		// Clip command
		"Cut clips around anchor times and save them":             "指定時刻の前後を切り出して保存",
		"Video file to clip (required)":                           "切り出す動画ファイル（必須）",
		"Anchor time in seconds or HH:MM:SS.fff (repeatable)":     "基準時刻（秒または HH:MM:SS.fff、複数指定可）",
		"Tracking data JSON file":                                 "トラッキングデータのJSONファイル",
		"Output directory for clips":                              "クリップの出力ディレクトリ",
		"Preferred clip mime type (repeatable, overrides config)": "優先するクリップのMIMEタイプ（複数指定可、設定を上書き）",
		"Write a Markdown summary of the run to this file":        "実行サマリーをMarkdown形式でこのファイルに出力",
		"%d of %d clips failed":                                   "%d / %d 件のクリップが失敗しました",
		"Summary saved to %s":                                     "サマリーを %s に保存しました",
		"Failed to write summary: %s":                             "サマリーの書き込みに失敗しました: %s",
		"Interrupted, shutting down...":                           "中断されました。シャットダウン中...",

		// Render command
		"Draw the tracking overlay at a time to PNG":            "指定時刻のトラッキングオーバーレイをPNGに描画",
		"Tracking data JSON file (required)":                    "トラッキングデータのJSONファイル（必須）",
		"Time in seconds or HH:MM:SS.fff (required)":            "時刻（秒または HH:MM:SS.fff、必須）",
		"Output PNG file path (required)":                       "出力PNGファイルパス（必須）",
		"Source video width in pixels":                          "元動画の幅（ピクセル）",
		"Source video height in pixels":                         "元動画の高さ（ピクセル）",
		"Displayed size as WIDTHxHEIGHT (default: source size)": "表示サイズ WIDTHxHEIGHT（デフォルト: 元動画のサイズ）",
		"Only draw the entity with this id":                     "このIDの対象のみを描画",
		"Video file to draw the overlay on":                     "オーバーレイを重ねる動画ファイル",
		"No tracking frame near %s":                             "%s 付近にトラッキングフレームがありません",
		"Overlay written to %s (%d boxes)":                      "オーバーレイを %s に書き込みました（%d 個のボックス）",

		// Export command
		"Re-export tracking data as JSON or CSV":       "トラッキングデータをJSONまたはCSVで再出力",
		"Output format (json, csv)":                    "出力形式（json, csv）",
		"Output file (default: standard output)":       "出力ファイル（デフォルト: 標準出力）",
		"Skipped %d frames with unreadable timestamps": "読み取れないタイムスタンプのフレーム %d 件をスキップしました",
		"Skipped %d malformed detections":              "不正な検出 %d 件をスキップしました",
		"Exported %d frames to %s":                     "%d フレームを %s に出力しました",

		// Probe and version commands
		"Show the duration, resolution and codec of a video": "動画の長さ、解像度、コーデックを表示",
		"exactly one video file is required":                 "動画ファイルを1つだけ指定してください",
		"Show version information":                           "バージョン情報を表示",
		"vidreview version %s":                               "vidreview バージョン %s",

		// Summary content
		"Clip Summary":           "クリップサマリー",
		"Generated":              "生成日時",
		"Source":                 "ソース",
		"Item":                   "項目",
		"Value":                  "値",
		"File":                   "ファイル",
		"Duration":               "再生時間",
		"Resolution":             "解像度",
		"Codec":                  "コーデック",
		"Settings":               "設定",
		"Window":                 "切り出し範囲",
		"Formats":                "形式",
		"Fallback":               "フォールバック",
		"Clips":                  "クリップ",
		"Anchor":                 "基準時刻",
		"Size":                   "サイズ",
		"None":                   "なし",
		"Failed: %v":             "失敗: %v",
		"%d of %d clips written": "%d / %d 件のクリップを書き込みました",
	})
}
