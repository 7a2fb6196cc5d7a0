package oracle_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/lookbook/internal/adapters/oracle"
	"github.com/okian/lookbook/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
	gobreaker "github.com/sony/gobreaker/v2"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestClient_Analyze(t *testing.T) {
	ctx := context.Background()

	Convey("Given an oracle that labels every upload", t, func() {
		var gotField, gotFilename, gotType string
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f, hdr, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer f.Close()
			gotField = "file"
			gotFilename = hdr.Filename
			gotType = hdr.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(f)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"color":"Red","style":"Solid","category":"Shirt","part":"Top"}`))
		}))
		defer srv.Close()

		c := oracle.New(srv.URL)

		Convey("When analyzing an image", func() {
			label, err := c.Analyze(ctx, pngHeader, "shirt.png")

			Convey("Then the upload should use the file field and the label be decoded", func() {
				So(err, ShouldBeNil)
				So(gotField, ShouldEqual, "file")
				So(gotFilename, ShouldEqual, "shirt.png")
				So(gotType, ShouldEqual, "image/png")
				So(gotBody, ShouldResemble, pngHeader)
				So(label, ShouldResemble, types.Label{Color: "Red", Style: "Solid", Category: "Shirt", Part: "Top"})
				So(c.State(), ShouldEqual, gobreaker.StateClosed)
			})
		})
	})

	Convey("Given an oracle that cannot infer some attributes", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"color":null,"style":"Solid","category":null,"part":null}`))
		}))
		defer srv.Close()

		label, err := oracle.New(srv.URL).Analyze(ctx, pngHeader, "")

		Convey("Then nulls should come back as empty attributes", func() {
			So(err, ShouldBeNil)
			So(label, ShouldResemble, types.Label{Style: "Solid"})
			So(label.Complete(), ShouldBeFalse)
		})
	})

	Convey("Given an oracle answering with an error status", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model warming up", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := oracle.New(srv.URL).Analyze(ctx, pngHeader, "x.png")

		Convey("Then the status should be reported", func() {
			So(errors.Is(err, oracle.ErrOracleStatus), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "503")
			So(err.Error(), ShouldContainSubstring, "model warming up")
		})
	})

	Convey("Given an oracle answering with garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := oracle.New(srv.URL).Analyze(ctx, pngHeader, "x.png")

		Convey("Then a decode error should be returned", func() {
			So(errors.Is(err, oracle.ErrDecode), ShouldBeTrue)
		})
	})

	Convey("Given a slow oracle", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := oracle.New(srv.URL, oracle.WithTimeout(50*time.Millisecond)).Analyze(ctx, pngHeader, "x.png")

		Convey("Then the call should time out", func() {
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})

	Convey("Given a client without an endpoint or image", t, func() {
		_, err := oracle.New("").Analyze(ctx, pngHeader, "x.png")
		So(errors.Is(err, oracle.ErrNoEndpoint), ShouldBeTrue)

		_, err = oracle.New("http://127.0.0.1:1").Analyze(ctx, nil, "x.png")
		So(errors.Is(err, oracle.ErrEmptyImage), ShouldBeTrue)
	})
}

func TestClient_Breaker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a failing oracle and a threshold of two failures", t, func() {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := oracle.New(srv.URL,
			oracle.WithName("test-oracle"),
			oracle.WithFailureThreshold(2),
			oracle.WithBreaker(1, time.Minute),
		)

		Convey("When calling three times", func() {
			_, err1 := c.Analyze(ctx, pngHeader, "x.png")
			_, err2 := c.Analyze(ctx, pngHeader, "x.png")
			_, err3 := c.Analyze(ctx, pngHeader, "x.png")

			Convey("Then the third call should be rejected without reaching the oracle", func() {
				So(errors.Is(err1, oracle.ErrOracleStatus), ShouldBeTrue)
				So(errors.Is(err2, oracle.ErrOracleStatus), ShouldBeTrue)
				So(errors.Is(err3, oracle.ErrUnavailable), ShouldBeTrue)
				So(errors.Is(err3, gobreaker.ErrOpenState), ShouldBeTrue)
				So(hits.Load(), ShouldEqual, int32(2))
				So(c.State(), ShouldEqual, gobreaker.StateOpen)
			})
		})
	})
}
