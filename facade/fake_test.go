package facade

import (
	"context"
	"testing"

	"github.com/godbus/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFakeStartsEmpty(t *testing.T) {
	f := NewFake()

	objs, err := f.GetManagedObjects(context.Background())

	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestFakeAddObjectIsRetrievable(t *testing.T) {
	f := NewFake()
	path := dbus.ObjectPath("/org/bluez/hci0/dev_AA_BB")
	obj := ManagedObject{"org.bluez.Device1": {"Address": dbus.MakeVariant("aa:bb:cc:dd:ee:ff")}}

	f.AddObject(path, obj)
	objs, err := f.GetManagedObjects(context.Background())

	require.NoError(t, err)
	require.Contains(t, objs, path)
	assert.Equal(t, obj, objs[path])
}

func TestFakeGetManagedObjectsReturnsACopyOfTheIndex(t *testing.T) {
	f := NewFake()
	path := dbus.ObjectPath("/org/bluez/hci0/dev_AA_BB")
	f.AddObject(path, ManagedObject{"org.bluez.Device1": {}})

	objs, err := f.GetManagedObjects(context.Background())
	require.NoError(t, err)
	delete(objs, path)

	again, err := f.GetManagedObjects(context.Background())
	require.NoError(t, err)
	assert.Contains(t, again, path)
}
