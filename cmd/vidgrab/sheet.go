package main

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/draw"

	"github.com/vidgrab/vidgrab"
)

func sheetCommand() *cli.Command {
	return &cli.Command{
		Name:      "sheet",
		Usage:     "render a contact sheet of frames sampled across the video",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "sheet.png", Usage: "output PNG path"},
			&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: "number of frames to sample"},
			&cli.IntFlag{Name: "columns", Aliases: []string{"c"}, Usage: "grid columns"},
			&cli.IntFlag{Name: "thumb-width", Usage: "thumbnail width in pixels"},
			&cli.BoolFlag{Name: "accurate", Usage: "index the stream for exact frame positions"},
		},
		Action: runSheet,
	}
}

func runSheet(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	data, err := readInput(c)
	if err != nil {
		return err
	}

	if c.IsSet("frames") {
		cfg.Frames = c.Int("frames")
	}
	if c.IsSet("columns") {
		cfg.Sheet.Columns = c.Int("columns")
	}
	if c.IsSet("thumb-width") {
		cfg.Sheet.ThumbWidth = c.Int("thumb-width")
	}
	if c.IsSet("accurate") {
		cfg.AccurateSeek = c.Bool("accurate")
	}

	info, err := vidgrab.Probe(data)
	if err != nil {
		return err
	}

	// Sample frame positions evenly across the stream. Streams shorter
	// than the sample count are decoded sequentially instead.
	n := cfg.Frames
	var (
		res  *vidgrab.Result
		nums []int64
	)
	if info.FrameCount > int64(n) {
		step := float64(info.FrameCount) / float64(n)
		nums = make([]int64, n)
		for i := range nums {
			nums[i] = int64(float64(i) * step)
		}
		res, err = vidgrab.LoadVidFrameNums(data, nums, vidgrab.WithAccurateSeek(cfg.AccurateSeek))
	} else {
		nums = make([]int64, n)
		for i := range nums {
			nums[i] = int64(i)
		}
		res, err = vidgrab.LoadVid(data, n, vidgrab.WithShortReadPolicy(vidgrab.ShortReadLoop))
	}
	if err != nil {
		return err
	}

	thumbW := cfg.Sheet.ThumbWidth
	thumbH := int(math.Round(float64(thumbW) * float64(res.Height) / float64(res.Width)))

	labelH := 0
	if cfg.Sheet.Labels {
		labelH = 16
	}

	cols := cfg.Sheet.Columns
	rows := (res.FrameCount + cols - 1) / cols
	gap, pad := cfg.Sheet.Gap, cfg.Sheet.Padding
	cellH := thumbH + labelH

	width := 2*pad + cols*thumbW + (cols-1)*gap
	height := 2*pad + rows*cellH + (rows-1)*gap

	dc := gg.NewContext(width, height)
	dc.SetColor(ParseColor(cfg.Sheet.Background))
	dc.Clear()

	for i := 0; i < res.FrameCount; i++ {
		x := pad + (i%cols)*(thumbW+gap)
		y := pad + (i/cols)*(cellH+gap)
		dc.DrawImage(thumbnail(res, i, thumbW, thumbH), x, y)
		if cfg.Sheet.Labels {
			dc.SetColor(ParseColor("#ffffff"))
			dc.DrawString(fmt.Sprintf("frame %d", nums[i]), float64(x), float64(y+thumbH+12))
		}
	}

	return dc.SavePNG(c.String("output"))
}

// thumbnail scales frame i of res down to w x h.
func thumbnail(res *vidgrab.Result, i, w, h int) *image.RGBA {
	src := frameImage(res, i)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
