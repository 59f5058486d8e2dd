package server

import "time"

// StartTicker 启动房间的 Tick 循环（单线程推进世界），直到 Stop 被调用
func (r *Room) StartTicker(interval time.Duration) {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
			}
			// 核心循环：处理输入 → 更新世界 → 广播视野增量
			start := time.Now()
			r.Step()
			elapsed := time.Since(start)
			r.metrics.AddTick(elapsed.Nanoseconds())
			if elapsed > interval {
				Log.Warnw("tick overrun", "room", r.ID, "elapsed", elapsed, "budget", interval)
			}
		}
	}()
}
