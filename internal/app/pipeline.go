package app

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/overlay"
)

// runPipeline reads frames until stopCh is closed.
//
// The loop idles at IdleFPS and only runs hand detection while the motion
// gate reports activity. After IdleTimeout without motion it drops back to
// IdleFPS.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	activeMode := false
	lastMotion := time.Now()

	ticker := time.NewTicker(time.Second / IdleFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			continue
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			logger.S().Debugf("Error reading frame: %v", err)
			continue
		}

		motion := a.motion.Check(frame)
		if motion.Moving {
			lastMotion = time.Now()
		}

		switch {
		case motion.Active && !activeMode:
			activeMode = true
			a.camera.SetFPS(ActiveFPS)
			ticker.Reset(time.Second / ActiveFPS)
			logger.S().Debugf("Switched to active mode (%.1f%% changed)", motion.ChangePercent)
		case !motion.Active && activeMode && time.Since(lastMotion) > IdleTimeout:
			activeMode = false
			a.camera.SetFPS(IdleFPS)
			ticker.Reset(time.Second / IdleFPS)
			logger.S().Debug("Switched to idle mode")
		}

		if activeMode {
			if _, err := a.ProcessFrame(frame); err != nil {
				logger.S().Warnf("Error processing frame: %v", err)
			}
		}
		frame.Close()
	}
}

// ProcessFrame detects hands in frame, updates the per-hand trackers and
// stores an annotated JPEG of the frame. frame is not modified.
func (a *App) ProcessFrame(frame *gocv.Mat) (Result, error) {
	d := a.Detector()
	if d == nil {
		return Result{}, ErrNoDetector
	}

	hands, err := d.Detect(frame)
	if err != nil {
		return Result{}, err
	}

	result := a.ProcessHands(hands)

	img := frame.Clone()
	defer img.Close()
	overlay.Annotate(&img, hands, result.Hands, a.config.Style)

	jpeg, err := overlay.EncodeJPEG(&img, a.config.JPEGQuality)
	if err != nil {
		return result, err
	}

	a.procMu.Lock()
	a.latest = jpeg
	a.procMu.Unlock()
	return result, nil
}

// ProcessHands feeds one frame's hands to the Left and Right trackers. A hand
// missing from the frame resets its tracker. Listeners receive the result.
func (a *App) ProcessHands(hands []detector.HandLandmarks) Result {
	var byHand [2]*detector.HandLandmarks
	for i := range hands {
		slot := 1
		if hands[i].Handedness == detector.HandLeft {
			slot = 0
		}
		if byHand[slot] == nil {
			byHand[slot] = &hands[i]
		}
	}

	sessionID := a.SessionID()
	result := Result{SessionID: sessionID, Timestamp: time.Now().UTC()}

	a.procMu.Lock()
	for slot, side := range []string{detector.HandLeft, detector.HandRight} {
		st := a.trackers[side].Update(byHand[slot])
		if st.Handedness == "" {
			st.Handedness = side
		}
		if st.HasHand {
			a.config.Metrics.ObserveFrame(string(st.Raw.Gesture))
		}
		if st.Changed {
			a.recordChange(sessionID, st)
		}
		result.Hands = append(result.Hands, st)
	}
	a.procMu.Unlock()

	a.mu.RLock()
	listeners := make([]Listener, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.RUnlock()

	for _, fn := range listeners {
		fn(result)
	}
	return result
}
