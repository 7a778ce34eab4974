package assetsmongodb

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"gopkg.in/mgo.v2"
)

// MongoDBLoader loads assets from a GridFS
type MongoDBLoader struct {
	session *mgo.Session
	dbname  string
	prefix  string
}

// OpenMongoDB opens the GridFS prefix of dbname at url as an asset loader
func OpenMongoDB(url string, dbname string, prefix string) (*MongoDBLoader, error) {
	gwlog.Debugf("Connecting MongoDB ...")
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, errors.Wrapf(err, "connect mongodb %s", url)
	}
	session.SetMode(mgo.Monotonic, true)
	return &MongoDBLoader{
		session: session,
		dbname:  dbname,
		prefix:  prefix,
	}, nil
}

// LoadFile reads the GridFS file named path
func (ml *MongoDBLoader) LoadFile(path string) ([]byte, error) {
	s := ml.session.Copy()
	defer s.Close()

	f, err := s.DB(ml.dbname).GridFS(ml.prefix).Open(path)
	if err == mgo.ErrNotFound {
		return nil, errors.Wrapf(assets.ErrNotFound, "%s", path)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	return ioutil.ReadAll(f)
}

// Store replaces the GridFS file named path with data
func (ml *MongoDBLoader) Store(path string, data []byte) error {
	s := ml.session.Copy()
	defer s.Close()

	gfs := s.DB(ml.dbname).GridFS(ml.prefix)
	if err := gfs.Remove(path); err != nil && err != mgo.ErrNotFound {
		return err
	}
	f, err := gfs.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close closes the session
func (ml *MongoDBLoader) Close() error {
	ml.session.Close()
	return nil
}
